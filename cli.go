package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
)

func runCLI(ctx context.Context, args []string) error {
	if len(args) < 1 {
		usage(os.Stdout)
		return nil
	}

	switch args[0] {
	case "scan":
		return runScan(ctx, args[1:])
	case "monitor":
		return runMonitor(ctx, args[1:])
	case "console":
		return runConsole(ctx, args[1:])
	case "log":
		return runLog(args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "registry":
		return runRegistry(args[1:])
	case "help", "-h", "--help":
		usage(os.Stdout)
		infoHelp(os.Stdout)
		return nil
	default:
		usage(os.Stdout)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// commonFlags binds the flags shared by every command. Only flags the user
// actually sets override the config file.
type commonFlags struct {
	config   *string
	iface    *string
	ipRange  *string
	timeout  *time.Duration
	interval *time.Duration
	passive  *bool
	mdns     *bool
	registry *string
	logLevel *string
}

func bindCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		config:   fs.String("config", "", "config file (default: search "+EnvConfigPath+", ./"+configFileName+", ...)"),
		iface:    fs.String("iface", "", "interface name (e.g. eth0)"),
		ipRange:  fs.String("range", "", "address range to sweep (CIDR or single IPv4)"),
		timeout:  fs.Duration("timeout", defaultProbeTimeout, "probe timeout (e.g. 1s)"),
		interval: fs.Duration("interval", defaultInterval, "delay between sweeps (e.g. 2s)"),
		passive:  fs.Bool("passive", false, "passive only (no ARP injection)"),
		mdns:     fs.Bool("mdns", true, "mDNS discovery (hostnames)"),
		registry: fs.String("registry", "", "known devices YAML file"),
		logLevel: fs.String("log-level", "", "log level (debug, info, warn, error)"),
	}
}

func (c *commonFlags) load(fs *flag.FlagSet) (*Config, error) {
	cfg, _, err := LoadConfig(*c.config)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "iface":
			cfg.Interface = *c.iface
		case "range":
			cfg.IPRange = *c.ipRange
		case "timeout":
			cfg.ProbeTimeout = *c.timeout
		case "interval":
			cfg.Interval = *c.interval
		case "passive":
			cfg.Passive = *c.passive
		case "mdns":
			cfg.MDNS = *c.mdns
		case "registry":
			cfg.Registry.File = *c.registry
		case "log-level":
			cfg.LogLevel = *c.logLevel
		}
	})
	cfg.applyDefaults()

	return cfg, nil
}

// app holds the components built from one configuration.
type app struct {
	cfg      *Config
	log      *zap.Logger
	registry *Registry
	prober   Prober
	target   *sweepTarget
	out      io.Writer
}

func newApp(cfg *Config) (*app, error) {
	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	registry, err := LoadRegistry(cfg.Registry)
	if err != nil {
		return nil, err
	}

	prober, target, err := NewProber(probeOptions(*cfg))
	if err != nil {
		return nil, err
	}

	log.Info("Loaded configuration",
		zap.String("iface", target.iface.Name),
		zap.String("self", target.selfIP.String()),
		zap.String("subnet", target.subnet.String()),
		zap.String("range", target.rng.String()),
		zap.Int("known_devices", registry.Len()))

	return &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		prober:   prober,
		target:   target,
		out:      os.Stdout,
	}, nil
}

func (a *app) newMonitor() *Monitor {
	dispatcher := NewDispatcher(*a.cfg, newNotifier(a.cfg.Notify, a.log), a.log)
	return NewMonitor(*a.cfg, a.prober, a.registry, dispatcher, a.log)
}

func (a *app) hosts(records []DeviceRecord) []Host {
	return enrichHosts(records, a.target.iface, a.cfg.MDNS, a.cfg.ProbeTimeout)
}

func runScan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	common := bindCommonFlags(fs)
	jsonOut := fs.Bool("json", false, "output JSON")
	fs.Parse(args)

	cfg, err := common.load(fs)
	if err != nil {
		return err
	}

	checkPrivileges()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	found, err := a.prober.Sweep(ctx)
	if err != nil {
		return err
	}
	if cfg.DedupeReplies {
		found = dedupeByIdentity(found)
	}

	hosts := a.hosts(a.registry.Resolve(found))

	if *jsonOut {
		return json.NewEncoder(a.out).Encode(hosts)
	}

	printHosts(a.out, hosts, cfg.Notify.IgnoreName)
	return nil
}

func runMonitor(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	common := bindCommonFlags(fs)
	fs.Parse(args)

	cfg, err := common.load(fs)
	if err != nil {
		return err
	}

	checkPrivileges()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	fmt.Fprintf(a.out, "lanwatch monitor — iface=%s (%s) range=%s refresh=%s\n",
		a.target.iface.Name, a.target.selfMAC, a.target.rng, cfg.Interval)

	m := a.newMonitor()
	m.Start(ctx)
	m.Wait()
	return nil
}

func runLog(args []string) error {
	fs := flag.NewFlagSet("log", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	file := fs.String("file", "", "log file to read (default: log.path from config)")
	events := fs.Bool("events", false, "read the unknown-device event log instead")
	fs.Parse(args)

	cfg, _, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}

	path := cfg.Log.Path
	if *events {
		path = cfg.Log.EventPath
	}
	if *file != "" {
		path = *file
	}
	if path == "" {
		return errors.New("no log file configured")
	}

	return readLocalLog(path, os.Stdout)
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	from := fs.String("from", "", "start date YYYY-MM-DD")
	to := fs.String("to", "", "end date YYYY-MM-DD")
	fs.Parse(args)

	cfg, _, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}

	return queryHistory(ctx, NewHistoryClient(cfg.History, cfg.Notify.Timeout), os.Stdout, *from, *to)
}

func queryHistory(ctx context.Context, h *HistoryClient, w io.Writer, from, to string) error {
	if from == "" && to == "" {
		events, err := h.All(ctx)
		if err != nil {
			return err
		}
		printHistory(w, "Database Log:", events)
		return nil
	}

	events, err := h.Between(ctx, from, to)
	if err != nil {
		return err
	}
	printHistory(w, fmt.Sprintf("Database Log From %s to %s:", from, to), events)
	return nil
}

func runRegistry(args []string) error {
	if len(args) < 1 {
		usage(os.Stdout)
		return nil
	}

	fs := flag.NewFlagSet("registry "+args[0], flag.ExitOnError)
	configPath := fs.String("config", "", "config file")
	db := fs.String("db", "", "SQLite registry store (default: registry.db from config)")
	name := fs.String("name", "", "device name")
	ip := fs.String("ip", "", "device IPv4 address")
	mac := fs.String("mac", "", "device MAC address")
	fs.Parse(args[1:])

	cfg, _, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *db != "" {
		cfg.Registry.DB = *db
	}

	switch args[0] {
	case "list":
		reg, err := LoadRegistry(cfg.Registry)
		if err != nil {
			return err
		}
		printRegistry(os.Stdout, reg.Entries())
		return nil
	case "add":
		if cfg.Registry.DB == "" {
			return errors.New("registry add needs --db or registry.db in config")
		}
		store, err := OpenRegistryStore(cfg.Registry.DB)
		if err != nil {
			return err
		}
		defer store.Close()

		e, err := store.Add(RegistryEntry{Name: *name, IP: *ip, MAC: *mac})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s %s %s\n", e.Name, e.IP, e.MAC)
		return nil
	default:
		return fmt.Errorf("unknown registry command %q", args[0])
	}
}

func printRegistry(w io.Writer, entries []RegistryEntry) {
	fmt.Fprintf(w, "%-20s %-16s %s\n", "Device Name", "IP Address", "MAC Address")
	fmt.Fprintln(w, separator)
	for _, e := range entries {
		fmt.Fprintf(w, "%-20s %-16s %s\n", e.Name, e.IP, e.MAC)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `lanwatch — LAN device discovery and new-device alerts

Usage:
  lanwatch scan     [--json] [--passive] [--iface eth0] [--range 192.168.1.0/24] [--timeout 1s] [--mdns=true|false]
  lanwatch monitor  [--passive] [--iface eth0] [--range ...] [--timeout 1s] [--interval 2s] [--registry devices.yaml]
  lanwatch console  (same flags as monitor; interactive menu)
  lanwatch log      [--file devices_log.txt] [--events]
  lanwatch history  [--from YYYY-MM-DD --to YYYY-MM-DD]
  lanwatch registry list|add [--db registry.db] [--name N --ip A --mac M]

Every command accepts --config <file>.`)
}

func infoHelp(w io.Writer) {
	fmt.Fprintln(w, `
lanwatch shows the devices currently on your network and logs network
events, such as a device connecting to the network. When a new device
appears, its name, IP address and MAC address are appended to the local
log and an alert is sent to the configured notification endpoint.
Register your own devices (registry file or registry add) so that only
unrecognized devices raise alerts.`)
}
