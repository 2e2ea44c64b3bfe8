// Package probes holds the Linux implementations of the shield detection
// probes. Every probe reads procfs or system metadata only; a probe that
// cannot complete its inspection reports not-detected.
package probes

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/lostbeltno7/GameGuardian/pkg/shield"
)

// knownCheatTools are process-name fragments of widely distributed
// memory-editing tools
var knownCheatTools = []string{
	"com.gameguardian.app",
	"org.cheatengine.cegui",
	"catch_.me_.if_.you_.can_",
	"com.zune.gamekiller",
	"com.lmzs.gamehacker",
	"com.leo.simulator",
	"com.cih.game_cih",
	"com.xmodgame",
	"com.zhangkun.gameplay",
	"org.sbtools.gamehack",
	"com.glt.ctrler",
	"com.finalshare.freecoin",
	"cheatengine",
	"gameconqueror",
	"scanmem",
}

// superuserPaths are filesystem locations whose presence marks a rooted
// device. Root alone is not an active cheat, so it grades below a tool
// hit.
var superuserPaths = []string{
	"/system/app/Superuser.apk",
	"/system/xbin/su",
	"/system/bin/su",
	"/sbin/su",
	"/system/su",
	"/system/bin/.ext/.su",
}

// ToolProbe scans running process command lines for known cheat tools
// and the filesystem for superuser binaries
type ToolProbe struct {
	// procRoot overrides /proc in tests
	procRoot string
	// fsRoot prefixes the superuser paths in tests ("" = live filesystem)
	fsRoot string
	// tools overrides the default tool list (nil uses knownCheatTools)
	tools []string
}

// NewToolProbe creates a tool probe scanning the live /proc
func NewToolProbe() *ToolProbe {
	return &ToolProbe{procRoot: "/proc"}
}

func (p *ToolProbe) Kind() shield.ProbeKind {
	return shield.ProbeTool
}

func (p *ToolProbe) Run(ctx context.Context) shield.Result {
	result := shield.Result{Kind: shield.ProbeTool}

	tools := p.tools
	if tools == nil {
		tools = knownCheatTools
	}

	entries, err := os.ReadDir(p.procRoot)
	if err != nil {
		return p.checkSuperuser(result)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !entry.IsDir() || !isNumeric(entry.Name()) {
			continue
		}

		cmdline, err := os.ReadFile(filepath.Join(p.procRoot, entry.Name(), "cmdline"))
		if err != nil {
			continue
		}
		// cmdline is NUL-separated
		cmd := strings.ToLower(string(bytes.ReplaceAll(cmdline, []byte{0}, []byte{' '})))

		for _, tool := range tools {
			if strings.Contains(cmd, tool) {
				result.Detected = true
				result.Confidence = shield.ConfidenceCritical
				result.Details = map[string]string{
					"tool": tool,
					"pid":  entry.Name(),
				}
				return result
			}
		}
	}

	return p.checkSuperuser(result)
}

// checkSuperuser reports a rooted device when any of the known superuser
// paths exists. Runs after the process scan so an active tool wins.
func (p *ToolProbe) checkSuperuser(result shield.Result) shield.Result {
	for _, path := range superuserPaths {
		if _, err := os.Stat(p.fsRoot + path); err == nil {
			result.Detected = true
			result.Confidence = shield.ConfidenceHigh
			result.Details = map[string]string{
				"check": "superuser",
				"path":  path,
			}
			return result
		}
	}
	return result
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
