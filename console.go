package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
)

// console is the interactive operator menu. The monitor runs in the
// background; the menu only starts it and reads its status.
type console struct {
	monitor    *Monitor
	history    *HistoryClient
	logPath    string
	ignoreName string
	lines      <-chan string
	out        io.Writer
}

func runConsole(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("console", flag.ExitOnError)
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

	c := &console{
		monitor:    a.newMonitor(),
		history:    NewHistoryClient(cfg.History, cfg.Notify.Timeout),
		logPath:    cfg.Log.Path,
		ignoreName: cfg.Notify.IgnoreName,
		lines:      readLines(os.Stdin),
		out:        a.out,
	}

	err = c.run(ctx)
	c.monitor.Stop()
	return err
}

func readLines(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		s := bufio.NewScanner(r)
		for s.Scan() {
			ch <- strings.TrimSpace(s.Text())
		}
	}()
	return ch
}

func (c *console) run(ctx context.Context) error {
	fmt.Fprintln(c.out, "\nlanwatch\n\nWelcome to the lanwatch home network protection program!")
	fmt.Fprintln(c.out, "\n*Pressing Ctrl+C ends this program at any point.")

	for {
		c.menu()

		choice, ok := c.readLine(ctx)
		if !ok {
			return nil
		}

		switch choice {
		case "0":
			infoHelp(c.out)
		case "1":
			c.startOrInspect(ctx)
		case "2":
			c.historyRange(ctx)
		case "3":
			c.report(queryHistory(ctx, c.history, c.out, "", ""))
		case "4":
			c.report(readLocalLog(c.logPath, c.out))
		case "q", "quit", "exit":
			return nil
		default:
			fmt.Fprintln(c.out, "\n Please enter a valid option number")
		}
	}
}

func (c *console) menu() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "     0) Information/ Help")
	if c.monitor.Running() {
		fmt.Fprintln(c.out, "     1) View Devices Currently On Network")
	} else {
		fmt.Fprintln(c.out, "     1) Turn on Network Monitoring")
	}
	fmt.Fprintln(c.out, "     2) View Log Report for Specific Timeframe")
	fmt.Fprintln(c.out, "     3) View Complete Log")
	fmt.Fprintln(c.out, "     4) View Local Device Log")
	fmt.Fprintln(c.out, "     q) Quit")
	fmt.Fprint(c.out, "\n Enter a listed option number to continue: ")
}

func (c *console) readLine(ctx context.Context) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case l, ok := <-c.lines:
		return l, ok
	}
}

func (c *console) startOrInspect(ctx context.Context) {
	if c.monitor.Start(ctx) {
		fmt.Fprintln(c.out, "\nMonitoring is now active.")
		return
	}

	st := c.monitor.Status()
	if st.Last == nil {
		fmt.Fprintln(c.out, "\nMonitoring is running, first sweep in progress.")
		return
	}
	if st.Last.Err != nil {
		fmt.Fprintf(c.out, "\nLast sweep at %s reported: %v\n", st.Last.At.Format(logHeaderLayout), st.Last.Err)
	}
	printHosts(c.out, enrichHosts(st.Last.Records, nil, false, 0), c.ignoreName)
}

func (c *console) historyRange(ctx context.Context) {
	fmt.Fprintln(c.out, "\nTo see the log for a specific time window, enter a start and end date (YYYY-MM-DD).")
	fmt.Fprint(c.out, "Start Date: ")
	from, ok := c.readLine(ctx)
	if !ok {
		return
	}
	fmt.Fprint(c.out, "End Date: ")
	to, ok := c.readLine(ctx)
	if !ok {
		return
	}
	c.report(queryHistory(ctx, c.history, c.out, from, to))
}

func (c *console) report(err error) {
	if err != nil {
		fmt.Fprintf(c.out, "\nError: %v\n", err)
	}
}
