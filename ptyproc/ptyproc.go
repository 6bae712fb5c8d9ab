// Package ptyproc brings up the child shell on a pseudoterminal and exposes
// it as a plain byte stream: Read/Write/Resize/Close, plus exit tracking.
package ptyproc

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"

	"github.com/javanhut/termcore/config"
)

// Process manages a pseudoterminal connection to a shell.
type Process struct {
	cmd  *exec.Cmd
	pty  *os.File
	mu   sync.Mutex

	exitedMu sync.Mutex
	exited   bool
	exitErr  error
}

// Start launches the configured shell on a new pty sized cols x rows.
func Start(cfg *config.Config, cols, rows uint16) (*Process, error) {
	shell := findShell(cfg)

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("ptyproc: resolve current user: %w", err)
	}

	shellBase := shell
	if idx := strings.LastIndex(shell, "/"); idx >= 0 {
		shellBase = shell[idx+1:]
	}

	var cmd *exec.Cmd
	if cfg.Shell.SourceRC {
		switch shellBase {
		case "bash", "zsh", "fish":
			cmd = exec.Command(shell, "-i")
		default:
			cmd = exec.Command(shell, "-i")
		}
	} else {
		switch shellBase {
		case "bash":
			cmd = exec.Command(shell, "--noprofile", "--norc", "-i")
		case "zsh":
			cmd = exec.Command(shell, "--no-rcs", "-i")
		case "fish":
			cmd = exec.Command(shell, "--no-config", "-i")
		default:
			cmd = exec.Command(shell, "-i")
		}
	}

	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	xdgRuntimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if xdgRuntimeDir == "" {
		xdgRuntimeDir = "/run/user/" + currentUser.Uid
	}

	env := []string{
		"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin:" + os.Getenv("PATH"),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
		"HOME=" + currentUser.HomeDir,
		"USER=" + currentUser.Username,
		"SHELL=" + shell,
		"LANG=en_US.UTF-8",
		"LC_ALL=en_US.UTF-8",
		"XDG_RUNTIME_DIR=" + xdgRuntimeDir,
	}
	if display := os.Getenv("DISPLAY"); display != "" {
		env = append(env, "DISPLAY="+display)
	}
	if wayland := os.Getenv("WAYLAND_DISPLAY"); wayland != "" {
		env = append(env, "WAYLAND_DISPLAY="+wayland)
		env = append(env, "XDG_SESSION_TYPE=wayland")
	}
	for k, v := range cfg.Shell.AdditionalEnv {
		env = append(env, k+"="+v)
	}
	cmd.Env = env
	cmd.Dir = currentUser.HomeDir

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("ptyproc: start %s: %w", shell, err)
	}

	p := &Process{cmd: cmd, pty: ptmx}

	go func() {
		err := cmd.Wait()
		p.exitedMu.Lock()
		p.exited = true
		p.exitErr = err
		p.exitedMu.Unlock()
	}()

	return p, nil
}

// findShell resolves the shell to launch: config override, then the user's
// /etc/passwd entry, then a fallback list of common shells.
func findShell(cfg *config.Config) string {
	if cfg.Shell.Path != "" {
		if _, err := os.Stat(cfg.Shell.Path); err == nil {
			return cfg.Shell.Path
		}
	}

	if currentUser, err := user.Current(); err == nil {
		if shell := userShellFromPasswd(currentUser.Username); shell != "" {
			if _, err := os.Stat(shell); err == nil {
				return shell
			}
		}
	}

	for _, shell := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(shell); err == nil {
			return shell
		}
	}
	return "/bin/sh"
}

func userShellFromPasswd(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}

// Read reads from the pty master.
func (p *Process) Read(buf []byte) (int, error) { return p.pty.Read(buf) }

// Write writes to the pty master.
func (p *Process) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pty.Write(data)
}

// Resize updates the pty window size.
func (p *Process) Resize(cols, rows uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return pty.Setsize(p.pty, &pty.Winsize{Cols: cols, Rows: rows})
}

// HasExited reports whether the child shell process has exited.
func (p *Process) HasExited() bool {
	p.exitedMu.Lock()
	defer p.exitedMu.Unlock()
	return p.exited
}

// ExitErr returns the error cmd.Wait() returned, if the process has exited.
func (p *Process) ExitErr() error {
	p.exitedMu.Lock()
	defer p.exitedMu.Unlock()
	return p.exitErr
}

// Close terminates the child process and releases the pty master.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	return p.pty.Close()
}
