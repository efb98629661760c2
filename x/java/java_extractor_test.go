package java_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CodMac/go-treesitter-coupling-analyzer/analyzer"
	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/parser"
	"github.com/CodMac/go-treesitter-coupling-analyzer/x/java"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopRoot = "testdata/shop"

func getTestFilePath(parts ...string) string {
	return filepath.Join(append([]string{shopRoot, "com", "example", "shop"}, parts...)...)
}

// collectProject 对目录下全部 Java 文件执行第一阶段，返回全局上下文
func collectProject(t *testing.T, root string) *core.GlobalContext {
	t.Helper()

	javaParser, err := parser.NewParser(model.LangJava)
	require.NoError(t, err)
	t.Cleanup(javaParser.Close)

	gc := core.NewGlobalContext(&core.Project{RootDir: root}, java.NewJavaSymbolResolver())
	collector := java.NewJavaCollector()

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".java") {
			return err
		}
		tree, src, err := javaParser.ParseFile(path)
		if err != nil {
			return err
		}
		t.Cleanup(tree.Close)
		fc, err := collector.CollectDefinitions(tree.RootNode(), path, src, gc.Project)
		if err != nil {
			return err
		}
		gc.RegisterFileContext(fc)
		return nil
	})
	require.NoError(t, err)
	return gc
}

func extractFile(t *testing.T, gc *core.GlobalContext, path string) map[string]*model.ClassFacts {
	t.Helper()

	fc, ok := gc.FileContexts[path]
	require.True(t, ok, "file %s not collected", path)
	facts, err := java.NewJavaExtractor().Extract(fc, gc)
	require.NoError(t, err)

	byName := make(map[string]*model.ClassFacts, len(facts))
	for _, f := range facts {
		byName[f.ClassName] = f
	}
	return byName
}

// writeSources 在临时目录中写入源码文件，返回根目录
func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestJavaCollector_TypesAndImports(t *testing.T) {
	gc := collectProject(t, shopRoot)

	fc := gc.FileContexts[getTestFilePath("model", "Order.java")]
	require.NotNil(t, fc)
	assert.Equal(t, "com.example.shop.model", fc.PackageName)

	var qns []string
	for _, entry := range fc.Types {
		qns = append(qns, entry.QualifiedName)
	}
	assert.Equal(t, []string{"com.example.shop.model.Order", "com.example.shop.model.Order.Builder"}, qns)

	builder, ok := fc.LocalType("Builder")
	require.True(t, ok)
	assert.Equal(t, "Order.Builder", builder.Name)

	svc := gc.FileContexts[getTestFilePath("service", "OrderService.java")]
	require.Len(t, svc.Imports, 3)
	assert.True(t, svc.Imports[0].IsWildcard)
	assert.Equal(t, "com.example.shop.model.*", svc.Imports[0].RawImportPath)
	assert.Equal(t, "OrderRepository", svc.Imports[1].Alias)

	assert.Equal(t, []string{
		"com.example.shop.model.Customer",
		"com.example.shop.model.LineItem",
		"com.example.shop.model.Order",
		"com.example.shop.model.Order.Builder",
		"com.example.shop.repo.InMemoryOrderRepository",
		"com.example.shop.repo.OrderRepository",
		"com.example.shop.service.OrderService",
	}, gc.Universe().Names())
}

func TestJavaSymbolResolver(t *testing.T) {
	gc := collectProject(t, shopRoot)
	fc := gc.FileContexts[getTestFilePath("service", "OrderService.java")]

	cases := []struct {
		name     string
		qn       string
		internal bool
	}{
		{"Customer", "com.example.shop.model.Customer", true},            // 通配符导入
		{"OrderRepository", "com.example.shop.repo.OrderRepository", true}, // 精确导入
		{"Logger", "org.slf4j.Logger", false},                            // 外部导入
		{"List<Order>", "", false},
		{"Order[]", "com.example.shop.model.Order", true},
		{"com.example.shop.model.Customer", "com.example.shop.model.Customer", true},
		{"java.time.Instant", "java.time.Instant", false},
		{"int", "", false},
	}
	for _, tc := range cases {
		qn, internal := gc.ResolveType(fc, tc.name)
		assert.Equal(t, tc.qn, qn, tc.name)
		assert.Equal(t, tc.internal, internal, tc.name)
	}
}

func TestJavaExtractor_OrderService(t *testing.T) {
	gc := collectProject(t, shopRoot)
	facts := extractFile(t, gc, getTestFilePath("service", "OrderService.java"))

	svc, ok := facts["com.example.shop.service.OrderService"]
	require.True(t, ok)
	assert.Equal(t, "com.example.shop.service", svc.PackageName)
	assert.Equal(t, model.Class, svc.Kind)
	assert.Equal(t, []string{"com.example.shop.model.*", "com.example.shop.repo.OrderRepository", "org.slf4j.Logger"}, svc.Imports)

	t.Run("Attributes", func(t *testing.T) {
		require.Len(t, svc.Attributes, 2)
		assert.Equal(t, "repository", svc.Attributes[0].Name)
		assert.Equal(t, "com.example.shop.repo.OrderRepository", svc.Attributes[0].QualifiedType)
		assert.Equal(t, []string{"private", "final"}, svc.Attributes[0].Modifiers)
		assert.Equal(t, "org.slf4j.Logger", svc.Attributes[1].QualifiedType)
	})

	t.Run("Callables", func(t *testing.T) {
		require.Len(t, svc.Constructors, 1)
		assert.Equal(t, "OrderService", svc.Constructors[0].Name)
		require.Len(t, svc.Constructors[0].Parameters, 1)
		assert.Equal(t, "OrderRepository", svc.Constructors[0].Parameters[0].Type)

		require.Len(t, svc.Methods, 1)
		place := svc.Methods[0]
		assert.Equal(t, "place", place.Name)
		assert.Equal(t, "Order", place.ReturnType)
		var locals []string
		for _, l := range place.LocalVariables {
			locals = append(locals, l.Name+":"+l.QualifiedType)
		}
		assert.Equal(t, []string{
			"customer:com.example.shop.model.Customer",
			"order:com.example.shop.model.Order",
			"sb:",
		}, locals)
	})

	t.Run("Calls", func(t *testing.T) {
		assert.Equal(t, []model.ConstructorCallFact{
			{ClassName: "com.example.shop.model.Customer", Arguments: []string{"customerName"}},
			{ClassName: "com.example.shop.model.Order", Arguments: []string{"id", "customer"}},
			{ClassName: "com.example.shop.model.LineItem", Arguments: []string{`"sku-1"`, "2", "9.5"}},
		}, svc.ConstructorCalls)

		assert.Equal(t, []model.MethodCallFact{
			{CalleeName: "com.example.shop.model.Order", MethodName: "addItem", Arguments: []string{`new LineItem("sku-1", 2, 9.5)`}},
			{CalleeName: "com.example.shop.repo.OrderRepository", MethodName: "save", Arguments: []string{"order"}},
			{CalleeName: "org.slf4j.Logger", MethodName: "info", Arguments: []string{`"placed"`}},
		}, svc.MethodCalls)

		assert.Equal(t, []string{"StringBuilder"}, svc.ExternalConstructors)
		assert.Equal(t, []string{"StringBuilder.append", "System.out.println"}, svc.ExternalMethods)
		assert.Equal(t, []string{"System.out"}, svc.ExternalAttributes)
	})
}

func TestJavaExtractor_NestedAndRecord(t *testing.T) {
	gc := collectProject(t, shopRoot)

	orderFacts := extractFile(t, gc, getTestFilePath("model", "Order.java"))
	order := orderFacts["com.example.shop.model.Order"]
	require.NotNil(t, order)

	var attrs []string
	for _, a := range order.Attributes {
		attrs = append(attrs, a.Name+":"+a.QualifiedType)
	}
	assert.Equal(t, []string{"id:", "items:java.util.List", "customer:com.example.shop.model.Customer"}, attrs)
	assert.Equal(t, "new ArrayList<>()", order.Attributes[1].Value)

	var methods []string
	for _, m := range order.Methods {
		methods = append(methods, m.Name)
	}
	// 嵌套类型的方法不属于外部类
	assert.Equal(t, []string{"addItem", "total", "getId", "getCustomer"}, methods)
	assert.Contains(t, order.MethodCalls, model.MethodCallFact{CalleeName: "com.example.shop.model.LineItem", MethodName: "subtotal"})
	assert.Contains(t, order.ConstructorCalls, model.ConstructorCallFact{ClassName: "java.util.ArrayList"})

	builder := orderFacts["com.example.shop.model.Order.Builder"]
	require.NotNil(t, builder)
	assert.Equal(t, []model.ConstructorCallFact{
		{ClassName: "com.example.shop.model.Order", Arguments: []string{"id", "customer"}},
	}, builder.ConstructorCalls)

	lineFacts := extractFile(t, gc, getTestFilePath("model", "LineItem.java"))
	line := lineFacts["com.example.shop.model.LineItem"]
	require.NotNil(t, line)
	assert.Equal(t, model.Record, line.Kind)
	require.Len(t, line.Attributes, 3)
	assert.Equal(t, "quantity", line.Attributes[1].Name)
	assert.Equal(t, []string{"private", "final"}, line.Attributes[1].Modifiers)
}

func TestJavaExtractor_VarLocal(t *testing.T) {
	root := writeSources(t, map[string]string{
		"p/A.java": "package p; class A { void run() { var b = new B(); b.foo(); } }",
		"p/B.java": "package p; class B { void foo() {} }",
	})
	gc := collectProject(t, root)
	a := extractFile(t, gc, filepath.Join(root, "p", "A.java"))["p.A"]
	require.NotNil(t, a)

	require.Len(t, a.Methods, 1)
	assert.Equal(t, []model.VariableFact{{Name: "b", Type: "B", QualifiedType: "p.B"}}, a.Methods[0].LocalVariables)
	assert.Equal(t, []model.MethodCallFact{{CalleeName: "p.B", MethodName: "foo"}}, a.MethodCalls)
	assert.Empty(t, a.ExternalMethods)

	res, err := analyzer.New(analyzer.Options{Language: model.LangJava, Workers: 1}, nil).Analyze(context.Background(), root)
	require.NoError(t, err)
	out, ok := res.Graph.Outgoing("p.A", "p.B")
	require.True(t, ok)
	assert.Equal(t, 1, out.Count(model.AttributeInvocation))
	assert.Equal(t, 1, out.Count(model.ConstructorInvocation))
	assert.Equal(t, 1, out.Count(model.MethodInvocation))
	v, ok := res.Graph.RelationMetrics("p.A", "p.B")
	require.True(t, ok)
	assert.InDelta(t, 0.8, v.CumulativeNormalisedCoupling, 1e-12)
}

func TestJavaExtractor_ChainedReceiver(t *testing.T) {
	root := writeSources(t, map[string]string{
		"p/A.java": `package p;
import java.util.Iterator;
class A {
    B b;
    Iterator<B> it;
    void run() {
        b.self().foo();
        it.next().foo();
        other().foo();
        helper.find(1, 2).foo();
    }
    B other() { return b; }
}`,
		"p/B.java": "package p; class B { B self() { return this; } void foo() {} }",
	})
	gc := collectProject(t, root)
	a := extractFile(t, gc, filepath.Join(root, "p", "A.java"))["p.A"]
	require.NotNil(t, a)

	// 接收者的类型取自被调方法声明的返回类型
	assert.Equal(t, []model.MethodCallFact{
		{CalleeName: "p.B", MethodName: "foo"},
		{CalleeName: "p.B", MethodName: "self"},
		{CalleeName: "java.util.Iterator", MethodName: "next"},
		{CalleeName: "p.B", MethodName: "foo"},
	}, a.MethodCalls)
	// 无法推断时展示名不含实参
	assert.Equal(t, []string{"Iterator.next().foo", "helper.find().foo", "helper.find"}, a.ExternalMethods)
}
