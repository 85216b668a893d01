package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/psarna/gtrace/pkg/driver"
	"github.com/psarna/gtrace/pkg/syscalls"
	"github.com/psarna/gtrace/pkg/tracer"
)

var (
	configPath string
	output     string
	logLevel   string
	pids       []int
	maxCapture uint64
	decodeFDs  bool

	exitCode int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gtrace [flags] [-- command [args...]]",
		Short: "Trace the system calls of a process",
		Long: `gtrace runs a command, or attaches to running processes, and prints every
system call they make together with its result.

Example:
  gtrace -- cat /etc/hostname
  gtrace -p 1234 -p 1235 -o trace.log`,
		SilenceUsage: true,
		RunE:         run,
	}

	// Everything after the command name belongs to the command.
	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "Write the trace to a file instead of stderr")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: off, info or debug (default from GTRACE_LOG_LEVEL)")
	rootCmd.Flags().IntSliceVarP(&pids, "pid", "p", nil, "Attach to a running process (repeatable)")
	rootCmd.Flags().Uint64Var(&maxCapture, "max-capture", 0, "Copy at most this many bytes of each write buffer (0 = 65536)")
	rootCmd.Flags().BoolVarP(&decodeFDs, "decode-fds", "y", false, "Print paths associated with file descriptors")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func run(cmd *cobra.Command, args []string) error {
	cfg := &Config{}
	if configPath != "" {
		var err error
		if cfg, err = loadConfig(configPath); err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = output
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("pid") {
		cfg.Pids = pids
	}
	if flags.Changed("max-capture") {
		cfg.MaxCapture = maxCapture
	}
	if flags.Changed("decode-fds") {
		cfg.DecodeFDs = decodeFDs
	}
	if len(args) == 0 {
		var err error
		if args, err = cfg.commandArgs(); err != nil {
			return err
		}
	}

	if len(args) == 0 && len(cfg.Pids) == 0 {
		return fmt.Errorf("nothing to trace: give a command or --pid")
	}
	if len(args) > 0 && len(cfg.Pids) > 0 {
		return fmt.Errorf("a command and --pid are mutually exclusive")
	}

	if cfg.LogLevel != "" {
		lvl, err := tracer.ParseLogLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		tracer.SetLogging(nil, lvl)
	}

	var w io.Writer = os.Stderr
	if cfg.Output != "" && cfg.Output != "-" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	printer := driver.NewPrinter(w)
	printer.ShowPid = len(cfg.Pids) > 1
	opts := driver.Options{
		Decoder: &syscalls.Decoder{
			Table:      syscalls.NativeTable,
			MaxCapture: cfg.MaxCapture,
		},
		Printer:   printer,
		DecodeFDs: cfg.DecodeFDs,
	}

	if len(cfg.Pids) > 0 {
		// Interrupting detaches and leaves the processes running.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return driver.AttachAll(ctx, cfg.Pids, opts)
	}

	// The child shares our terminal and gets its own SIGINT; we keep tracing
	// until it is gone.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	child := exec.Command(args[0], args[1:]...)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	code, err := driver.Spawn(context.Background(), child, opts)
	if err != nil {
		return err
	}
	exitCode = code
	return nil
}
