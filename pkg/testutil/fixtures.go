package testutil

import (
	"path/filepath"
	"testing"

	"github.com/confshare/confshare/pkg/paths"
	"github.com/confshare/confshare/pkg/types"
)

// SourceTree describes an assistant configuration directory fixture.
type SourceTree struct {
	Commands map[string]string // name -> markdown content
	Agents   map[string]string
	Skills   map[string]map[string]string // skill name -> file -> content
	Hooks    string                       // hooks.json content, "" to omit
	MCP      string                       // mcp.json content, "" to omit
}

// BuildSource writes the tree under dir on fs.
func BuildSource(t *testing.T, fs types.FS, dir string, tree SourceTree) {
	t.Helper()
	MkdirAll(t, fs, dir)

	for name, content := range tree.Commands {
		WriteFile(t, fs, filepath.Join(dir, paths.CommandsDir, name+".md"), content)
	}
	for name, content := range tree.Agents {
		WriteFile(t, fs, filepath.Join(dir, paths.AgentsDir, name+".md"), content)
	}
	for skill, files := range tree.Skills {
		skillDir := filepath.Join(dir, paths.SkillsDir, skill)
		MkdirAll(t, fs, skillDir)
		for name, content := range files {
			WriteFile(t, fs, filepath.Join(skillDir, name), content)
		}
	}
	if tree.Hooks != "" {
		WriteFile(t, fs, filepath.Join(dir, paths.HooksFile), tree.Hooks)
	}
	if tree.MCP != "" {
		WriteFile(t, fs, filepath.Join(dir, paths.MCPFile), tree.MCP)
	}
}

// SimpleHooksJSON is a minimal valid hooks mapping with one entry.
const SimpleHooksJSON = `{
  "pre_tool_use": [
    {
      "type": "command",
      "tool_name": "bash",
      "when": "always",
      "description": "audit shell usage"
    }
  ]
}
`

// SimpleMCPJSON is a minimal MCP server binding with a secret value.
const SimpleMCPJSON = `{
  "mcpServers": {
    "github": {
      "command": "mcp-github",
      "env": {
        "GITHUB_API_TOKEN": "ghp_secret123"
      }
    }
  }
}
`
