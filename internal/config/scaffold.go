package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InitProjectConfigScaffold 在指定目录下写入项目级配置模板（./.taskvoice/config.json），已存在则保留
// InitProjectConfigScaffold writes a project config template (./.taskvoice/config.json) under dir, keeping an existing one
func InitProjectConfigScaffold(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get current working directory: %w", err)
		}
		dir = cwd
	}

	cfgDir := filepath.Join(dir, ".taskvoice")
	path := filepath.Join(cfgDir, "config.json")

	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return "", fmt.Errorf("project config path is a directory: %s", path)
		}
		return path, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("stat project config: %w", err)
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir .taskvoice: %w", err)
	}

	// 模板不包含密钥，也不固定存储目录
	// The template carries no credentials and leaves the storage dir at its default
	cfg := Default()
	cfg.Provider.OpenAI.APIKey = ""
	cfg.Provider.Gemini.APIKey = ""
	cfg.Storage.BaseDir = ""
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write project config: %w", err)
	}
	return path, nil
}
