// Package main runs the simulator and the MCP bridge in one container.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"
)

const (
	defaultHTTPAddr    = "0.0.0.0:8080"
	defaultMCPHTTPAddr = "0.0.0.0:8081"

	// shutdownTimeout is the grace period before forcing child exit.
	shutdownTimeout = 10 * time.Second
)

// childSpec describes a binary supervised by the entrypoint.
type childSpec struct {
	name string
	path string
	args []string
}

type childProcess struct {
	name string
	cmd  *exec.Cmd
}

type processExit struct {
	name string
	err  error
}

func main() {
	log.SetPrefix("[ENTRYPOINT] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	specs := []childSpec{
		{
			name: "simulator",
			path: "/app/simulator",
			args: []string{"-http-addr=" + getenvDefault("SIMULATOR_HTTP_ADDR", defaultHTTPAddr)},
		},
		{
			name: "mcp",
			path: "/app/mcp",
			args: []string{"-transport=http", "-http-addr=" + getenvDefault("SIMULATOR_MCP_HTTP_ADDR", defaultMCPHTTPAddr)},
		},
	}

	children := make([]*childProcess, 0, len(specs))
	for _, spec := range specs {
		child, err := startChild(spec)
		if err != nil {
			terminateChildren(children)
			log.Fatalf("%v", err)
		}
		children = append(children, child)
	}

	exitCh := make(chan processExit, len(children))
	for _, child := range children {
		go func() {
			exitCh <- processExit{name: child.name, err: child.cmd.Wait()}
		}()
	}

	select {
	case <-ctx.Done():
		log.Printf("shutdown signal received")
		terminateChildren(children)
		waitForChildren(exitCh, len(children), children)
	case exit := <-exitCh:
		log.Printf("%s exited: %v", exit.name, exit.err)
		terminateChildren(children)
		waitForChildren(exitCh, len(children)-1, children)
		os.Exit(exitCode(exit.err))
	}
}

// startChild starts a child process with inherited stdio streams.
func startChild(spec childSpec) (*childProcess, error) {
	cmd := exec.Command(spec.path, spec.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", spec.name, err)
	}
	return &childProcess{name: spec.name, cmd: cmd}, nil
}

func terminateChildren(children []*childProcess) {
	for _, child := range children {
		if child.cmd.Process != nil {
			_ = child.cmd.Process.Signal(syscall.SIGTERM)
		}
	}
}

// waitForChildren waits for the remaining exits, killing stragglers after
// shutdownTimeout.
func waitForChildren(exitCh <-chan processExit, remaining int, children []*childProcess) {
	timer := time.NewTimer(shutdownTimeout)
	defer timer.Stop()
	for ; remaining > 0; remaining-- {
		select {
		case <-exitCh:
		case <-timer.C:
			for _, child := range children {
				if child.cmd.Process != nil && child.cmd.ProcessState == nil {
					_ = child.cmd.Process.Kill()
				}
			}
			return
		}
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
