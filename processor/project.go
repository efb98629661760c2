package processor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"golang.org/x/mod/modfile"
)

// DetectProject 构建项目元信息；根目录存在 go.mod 时读取其 module 路径
func DetectProject(rootDir string) (*core.Project, error) {
	project := &core.Project{RootDir: rootDir}

	modPath := filepath.Join(rootDir, "go.mod")
	data, err := os.ReadFile(modPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return project, nil
		}
		return nil, fmt.Errorf("failed to read go.mod: %w", err)
	}

	modFile, err := modfile.Parse(modPath, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse go.mod: %w", err)
	}
	if modFile.Module != nil {
		project.ModulePath = modFile.Module.Mod.Path
	}
	return project, nil
}
