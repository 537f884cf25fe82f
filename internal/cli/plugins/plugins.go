// Package plugins runs external logplay-<command> binaries for commands
// that are not built in, the way git and kubectl do.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Prefix is prepended to a command name to form the plugin binary name.
const Prefix = "logplay-"

// EnvPluginDir overrides the per-user plugin directory.
const EnvPluginDir = "LOGPLAY_PLUGIN_DIR"

// EnvBinary is set for plugins to the path of the logplay binary that launched them.
const EnvBinary = "LOGPLAY_BIN"

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// UserDir returns the per-user plugin directory, $LOGPLAY_PLUGIN_DIR or ~/.logplay/plugins.
func UserDir() string {
	if dir := os.Getenv(EnvPluginDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".logplay", "plugins")
}

// SearchDirs lists the directories checked before PATH, in order.
func SearchDirs() []string {
	var dirs []string
	if execPath, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(execPath))
	}
	if dir := UserDir(); dir != "" {
		dirs = append(dirs, dir)
	}
	return dirs
}

// Find returns the path of the plugin binary for command.
// The binary's directory, the user plugin directory and then PATH are searched.
func Find(command string) (string, error) {
	name := Prefix + command

	for _, dir := range SearchDirs() {
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin with the terminal attached and returns its exit code.
func Execute(pluginPath string, args []string) int {
	cmd := exec.Command(pluginPath, args...) // #nosec G204 -- plugin discovery is the point
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if self, err := os.Executable(); err == nil {
		cmd.Env = append(cmd.Env, EnvBinary+"="+self)
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 2
	}
	return 0
}

// NotFoundMessage explains where a plugin for command would have to be installed.
func NotFoundMessage(command string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "unknown command %q for \"logplay\"\n", command)
	sb.WriteString("\nIf this is a plugin, install the binary as one of:\n")
	fmt.Fprintf(&sb, "  - %s%s in the same directory as logplay\n", Prefix, command)
	if dir := UserDir(); dir != "" {
		fmt.Fprintf(&sb, "  - %s\n", filepath.Join(dir, Prefix+command))
	}
	fmt.Fprintf(&sb, "  - %s%s anywhere in your PATH\n", Prefix, command)
	sb.WriteString("\nRun 'logplay --help' for usage.")

	return sb.String()
}

// isExecutable reports whether path is a regular file with an execute bit set.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode()&0111 != 0
}
