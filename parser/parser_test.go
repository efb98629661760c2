package parser_test

import (
	"path/filepath"
	"testing"

	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"

	_ "github.com/CodMac/go-treesitter-coupling-analyzer/x/golang"
	_ "github.com/CodMac/go-treesitter-coupling-analyzer/x/java" // 确保注册 Java 语言
)

func findChild(root *sitter.Node, kind string) *sitter.Node {
	cursor := root.Walk()
	defer cursor.Close()
	if !cursor.GotoFirstChild() {
		return nil
	}
	for {
		if node := cursor.Node(); node.Kind() == kind {
			return node
		}
		if !cursor.GotoNextSibling() {
			return nil
		}
	}
}

func TestTreeSitterParser_ParseFile(t *testing.T) {
	javaParser, err := parser.NewParser(model.LangJava)
	require.NoError(t, err)
	defer javaParser.Close()

	filePath := filepath.Join("..", "x", "java", "testdata", "shop", "com", "example", "shop", "service", "OrderService.java")
	tree, src, err := javaParser.ParseFile(filePath)
	require.NoError(t, err)
	defer tree.Close()
	require.NotEmpty(t, src)

	// Tree-sitter Java 文件的根节点类型是 "program"
	root := tree.RootNode()
	assert.Equal(t, "program", root.Kind())

	classNode := findChild(root, "class_declaration")
	require.NotNil(t, classNode)
	name := classNode.ChildByFieldName("name")
	require.NotNil(t, name)
	assert.Equal(t, "identifier", name.Kind())
	assert.Equal(t, "OrderService", name.Utf8Text(src))
}

func TestTreeSitterParser_ParseGo(t *testing.T) {
	goParser, err := parser.NewParser(model.LangGo)
	require.NoError(t, err)
	defer goParser.Close()

	src := []byte("package demo\n\ntype Order struct{ ID string }\n")
	tree, err := goParser.Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, "source_file", root.Kind())
	assert.NotNil(t, findChild(root, "type_declaration"))
	assert.False(t, root.HasError())
}

func TestTreeSitterParser_Errors(t *testing.T) {
	_, err := parser.NewParser(model.Language("cobol"))
	assert.Error(t, err)

	javaParser, err := parser.NewParser(model.LangJava)
	require.NoError(t, err)
	defer javaParser.Close()

	_, _, err = javaParser.ParseFile(filepath.Join(t.TempDir(), "Missing.java"))
	assert.Error(t, err)

	// 语法错误不会导致解析失败
	tree, err := javaParser.Parse([]byte("class Broken { void m( }"))
	require.NoError(t, err)
	defer tree.Close()
	assert.True(t, tree.RootNode().HasError())
}
