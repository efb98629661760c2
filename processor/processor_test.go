package processor_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/processor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/CodMac/go-treesitter-coupling-analyzer/x/golang"
	_ "github.com/CodMac/go-treesitter-coupling-analyzer/x/java"
)

const (
	goApp    = "../x/golang/testdata/app"
	javaShop = "../x/java/testdata/shop"
)

func listFiles(t *testing.T, root, ext string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ext) {
			files = append(files, path)
		}
		return err
	})
	require.NoError(t, err)
	return files
}

func TestDetectProject(t *testing.T) {
	project, err := processor.DetectProject(goApp)
	require.NoError(t, err)
	assert.Equal(t, "example.com/app", project.ModulePath)

	project, err = processor.DetectProject(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, project.ModulePath)

	broken := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(broken, "go.mod"), []byte("modul example.com/broken\n"), 0o644))
	_, err = processor.DetectProject(broken)
	assert.Error(t, err)
}

func TestProcessFiles_Go(t *testing.T) {
	project, err := processor.DetectProject(goApp)
	require.NoError(t, err)

	fp := processor.NewFileProcessor(model.LangGo, 2, project, nil)
	result, err := fp.ProcessFiles(context.Background(), listFiles(t, goApp, ".go"))
	require.NoError(t, err)

	var names []string
	for _, f := range result.Facts {
		names = append(names, f.ClassName)
	}
	assert.Equal(t, []string{
		"example.com/app/model.Item",
		"example.com/app/model.Order",
		"example.com/app/service.OrderService",
		"example.com/app/store.MemoryRepository",
		"example.com/app/store.Repository",
	}, names)
	assert.Len(t, result.Context.FileContexts, 4)
}

func TestProcessFiles_JavaIsDeterministic(t *testing.T) {
	files := listFiles(t, javaShop, ".java")

	run := func(workers int) []string {
		fp := processor.NewFileProcessor(model.LangJava, workers, nil, nil)
		result, err := fp.ProcessFiles(context.Background(), files)
		require.NoError(t, err)
		var out []string
		for _, f := range result.Facts {
			out = append(out, f.ClassName)
			for _, c := range f.MethodCalls {
				out = append(out, "  "+c.CalleeName+"#"+c.MethodName)
			}
		}
		return out
	}

	single := run(1)
	classes := 0
	for _, line := range single {
		if !strings.HasPrefix(line, " ") {
			classes++
		}
	}
	assert.Equal(t, 7, classes)
	assert.Equal(t, single, run(8))
}

func TestProcessFiles_DuplicateQualifiedName(t *testing.T) {
	root := t.TempDir()
	src := []byte("package p; class B { int x; void foo(){} }")
	var files []string
	for _, dir := range []string{"a", "b"} {
		path := filepath.Join(root, dir, "p", "B.java")
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, src, 0o644))
		files = append(files, path)
	}

	fp := processor.NewFileProcessor(model.LangJava, 2, nil, nil)
	result, err := fp.ProcessFiles(context.Background(), files)
	require.NoError(t, err)

	// 先注册的定义生效，另一份被跳过
	require.Len(t, result.Facts, 1)
	b := result.Facts[0]
	assert.Equal(t, "p.B", b.ClassName)
	assert.Len(t, b.Attributes, 1)
	assert.Len(t, b.Methods, 1)
}

func TestProcessFiles_Errors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		fp := processor.NewFileProcessor(model.LangJava, 2, nil, nil)
		_, err := fp.ProcessFiles(context.Background(), []string{filepath.Join(t.TempDir(), "Missing.java")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "phase 1")
	})

	t.Run("UnregisteredLanguage", func(t *testing.T) {
		fp := processor.NewFileProcessor(model.Language("cobol"), 2, nil, nil)
		_, err := fp.ProcessFiles(context.Background(), []string{"a.cbl"})
		assert.ErrorIs(t, err, model.ErrLanguageNotRegistered)
	})

	t.Run("NoFiles", func(t *testing.T) {
		fp := processor.NewFileProcessor(model.LangJava, 2, nil, nil)
		result, err := fp.ProcessFiles(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, result.Facts)
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fp := processor.NewFileProcessor(model.LangJava, 2, nil, nil)
		_, err := fp.ProcessFiles(ctx, listFiles(t, javaShop, ".java"))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
