// Package hostcli is the async adapter to the external host password-
// manager CLI. It spawns the binary per operation, passes
// the session token through the environment, and parses its JSON output,
// discarding fields (like the URI `match` payload) whose type varies.
//
// Grounded directly on backends/bitwarden/bitwarden.go: same
// exec.CommandContext-per-call shape, same BW_SESSION environment
// convention, same "locked" stderr sniffing for status detection.
package hostcli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/vaultkeeper"
)

// Status is the vault's authentication state.
type Status int

const (
	StatusUnknown Status = iota
	StatusLoggedOut
	StatusLocked
	StatusUnlocked
)

func (s Status) String() string {
	switch s {
	case StatusLoggedOut:
		return "logged-out"
	case StatusLocked:
		return "locked"
	case StatusUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// sessionEnvVar is the fixed environment variable name the host CLI reads
// its session token from.
const sessionEnvVar = "BW_SESSION"

// Runner abstracts process execution so tests can substitute a fake
// without touching a real binary — the same dependency-injection seam
// Backend.Init gives exec.LookPath.
type Runner interface {
	// Run executes binary with args, the session token available via
	// sessionEnvVar, and returns stdout, stderr, and the run error (which
	// is non-nil for both a launch failure and a non-zero exit).
	Run(ctx context.Context, session string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	binary string
}

func (r execRunner) Run(ctx context.Context, session string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	if session != "" {
		cmd.Env = append(cmd.Environ(), sessionEnvVar+"="+session)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Adapter is the host-CLI adapter. It holds no mutable state beyond the
// runner and binary name; the session token is threaded through each call
// explicitly so Adapter is safe to invoke from concurrent goroutines.
type Adapter struct {
	runner Runner
	binary string
	log    zerolog.Logger
}

// New constructs an Adapter that shells out to binary (e.g. "bw"), logging
// nowhere until WithLogger is called.
func New(binary string) *Adapter {
	return &Adapter{runner: execRunner{binary: binary}, binary: binary, log: zerolog.New(io.Discard)}
}

// NewWithRunner constructs an Adapter over a custom Runner, for tests.
func NewWithRunner(runner Runner, binary string) *Adapter {
	return &Adapter{runner: runner, binary: binary, log: zerolog.New(io.Discard)}
}

// WithLogger attaches log, used to tag every host CLI invocation with a
// fresh correlation id so a slow or failing subprocess call can be traced
// through the log file by call_id.
func (a *Adapter) WithLogger(log zerolog.Logger) *Adapter {
	a.log = log
	return a
}

func (a *Adapter) logCall(op string) zerolog.Logger {
	callID := uuid.New().String()
	a.log.Debug().Str("op", op).Str("call_id", callID).Msg("host cli call")
	return a.log.With().Str("call_id", callID).Logger()
}

// Probe checks the host CLI is installed and runnable at all.
func (a *Adapter) Probe(ctx context.Context) error {
	if _, _, err := a.runner.Run(ctx, "", "--version"); err != nil {
		return vaultkeeper.Wrap(vaultkeeper.KindHostToolMissing, "probe", a.binary, err)
	}
	return nil
}

// Status queries the vault's current authentication state.
func (a *Adapter) Status(ctx context.Context, session string) (Status, error) {
	clog := a.logCall("status")
	stdout, stderr, err := a.runner.Run(ctx, session, "status")
	if err != nil {
		if looksLocked(stderr) {
			return StatusLocked, nil
		}
		clog.Error().Err(err).Bytes("stderr", stderr).Msg("status failed")
		return StatusUnknown, vaultkeeper.Wrap(vaultkeeper.KindHostCommandFailed, "status", "", err)
	}

	var parsed struct {
		Status string `json:"status"`
	}
	if jsonErr := json.Unmarshal(stdout, &parsed); jsonErr != nil {
		return StatusUnknown, vaultkeeper.Wrap(vaultkeeper.KindHostParseError, "status", "", jsonErr)
	}

	switch parsed.Status {
	case "unauthenticated":
		return StatusLoggedOut, nil
	case "locked":
		return StatusLocked, nil
	case "unlocked":
		return StatusUnlocked, nil
	default:
		return StatusUnknown, nil
	}
}

// Unlock exchanges a master password for a session token.
func (a *Adapter) Unlock(ctx context.Context, password string) (string, error) {
	clog := a.logCall("unlock")
	stdout, stderr, err := a.runner.Run(ctx, "", "unlock", "--raw", password)
	if err != nil {
		if looksInvalidCredentials(stderr) {
			clog.Warn().Msg("unlock rejected: invalid credentials")
			return "", vaultkeeper.Wrap(vaultkeeper.KindHostInvalidCredentials, "unlock", "", err)
		}
		clog.Error().Err(err).Msg("unlock failed")
		return "", vaultkeeper.Wrap(vaultkeeper.KindHostCommandFailed, "unlock", "", err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// Sync pulls the latest vault contents from the server.
func (a *Adapter) Sync(ctx context.Context, session string) error {
	clog := a.logCall("sync")
	_, stderr, err := a.runner.Run(ctx, session, "sync")
	if err != nil {
		if looksLocked(stderr) {
			return vaultkeeper.Wrap(vaultkeeper.KindHostLocked, "sync", "", err)
		}
		clog.Error().Err(err).Msg("sync failed")
		return vaultkeeper.Wrap(vaultkeeper.KindHostCommandFailed, "sync", "", err)
	}
	return nil
}

// List fetches every vault item.
func (a *Adapter) List(ctx context.Context, session string) ([]vaultkeeper.VaultEntry, error) {
	clog := a.logCall("list")
	stdout, stderr, err := a.runner.Run(ctx, session, "list", "items")
	if err != nil {
		if looksLocked(stderr) {
			return nil, vaultkeeper.Wrap(vaultkeeper.KindHostLocked, "list", "", err)
		}
		clog.Error().Err(err).Msg("list failed")
		return nil, vaultkeeper.Wrap(vaultkeeper.KindHostCommandFailed, "list", "", err)
	}

	var raw []wireItem
	if jsonErr := json.Unmarshal(stdout, &raw); jsonErr != nil {
		clog.Error().Err(jsonErr).Msg("list response did not parse")
		return nil, vaultkeeper.Wrap(vaultkeeper.KindHostParseError, "list", "", jsonErr)
	}

	entries := make([]vaultkeeper.VaultEntry, len(raw))
	for i, item := range raw {
		entries[i] = item.toEntry()
	}
	clog.Debug().Int("count", len(entries)).Msg("list succeeded")
	return entries, nil
}

// Get fetches a single vault item by id.
func (a *Adapter) Get(ctx context.Context, session, id string) (vaultkeeper.VaultEntry, error) {
	if err := validateEntryID(id); err != nil {
		return vaultkeeper.VaultEntry{}, err
	}

	clog := a.logCall("get")
	stdout, stderr, err := a.runner.Run(ctx, session, "get", "item", id)
	if err != nil {
		if bytes.Contains(bytes.ToLower(stderr), []byte("not found")) || bytes.Contains(stdout, []byte("Not found")) {
			clog.Warn().Str("id", id).Msg("item not found")
			return vaultkeeper.VaultEntry{}, vaultkeeper.Wrap(vaultkeeper.KindHostCommandFailed, "get", id, vaultkeeper.ErrNotFound)
		}
		if looksLocked(stderr) {
			return vaultkeeper.VaultEntry{}, vaultkeeper.Wrap(vaultkeeper.KindHostLocked, "get", id, err)
		}
		clog.Error().Err(err).Str("id", id).Msg("get failed")
		return vaultkeeper.VaultEntry{}, vaultkeeper.Wrap(vaultkeeper.KindHostCommandFailed, "get", id, err)
	}

	var item wireItem
	if jsonErr := json.Unmarshal(stdout, &item); jsonErr != nil {
		clog.Error().Err(jsonErr).Str("id", id).Msg("get response did not parse")
		return vaultkeeper.VaultEntry{}, vaultkeeper.Wrap(vaultkeeper.KindHostParseError, "get", id, jsonErr)
	}
	return item.toEntry(), nil
}

// looksLocked mirrors this design: any non-zero exit with stderr
// containing the host tool's "locked" signal maps to Locked.
func looksLocked(stderr []byte) bool {
	return bytes.Contains(bytes.ToLower(stderr), []byte("vault is locked"))
}

func looksInvalidCredentials(stderr []byte) bool {
	lower := bytes.ToLower(stderr)
	return bytes.Contains(lower, []byte("invalid master password")) || bytes.Contains(lower, []byte("username or password is incorrect"))
}
