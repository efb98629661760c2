// Package mcpserver 通过 MCP 协议把耦合分析暴露为工具。
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/CodMac/go-treesitter-coupling-analyzer/analyzer"
	"github.com/CodMac/go-treesitter-coupling-analyzer/model"
	"github.com/CodMac/go-treesitter-coupling-analyzer/output"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	Name    = "coupling-analyzer"
	Version = "1.0.0"
)

// CouplingReport analyze_coupling 的返回值
type CouplingReport struct {
	Root      string            `json:"root"`
	Language  string            `json:"language"`
	Files     int               `json:"files"`
	Classes   int               `json:"classes"`
	Relations []output.Relation `json:"relations"`
}

type Tools struct {
	opts   analyzer.Options
	logger *slog.Logger
}

func NewTools(opts analyzer.Options, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{opts: opts, logger: logger}
}

// New 创建注册了全部工具的 MCP 服务
func New(opts analyzer.Options, logger *slog.Logger) *server.MCPServer {
	t := NewTools(opts, logger)

	mcpServer := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(false),
	)

	analyzeCouplingTool := mcp.NewTool("analyze_coupling",
		mcp.WithDescription("Analyze class coupling of a repository and list the most coupled class pairs"),
		mcp.WithString("dir",
			mcp.Description("Repository root (default: current directory)"),
		),
		mcp.WithString("language",
			mcp.Description("Source language: java or go (default: configured language)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of relations to return (default: 20, 0 for all)"),
		),
	)
	mcpServer.AddTool(analyzeCouplingTool, t.AnalyzeCoupling)

	classCouplingTool := mcp.NewTool("class_coupling",
		mcp.WithDescription("Show declarations, dependencies in both directions and coupling metrics of one class"),
		mcp.WithString("dir",
			mcp.Description("Repository root (default: current directory)"),
		),
		mcp.WithString("class",
			mcp.Required(),
			mcp.Description("Fully qualified class name, e.g. com.example.OrderService"),
		),
		mcp.WithString("language",
			mcp.Description("Source language: java or go (default: configured language)"),
		),
	)
	mcpServer.AddTool(classCouplingTool, t.ClassCoupling)

	return mcpServer
}

// ServeStdio 在标准输入输出上运行服务，直到输入关闭
func ServeStdio(mcpServer *server.MCPServer) error {
	return server.ServeStdio(mcpServer)
}

func (t *Tools) analyze(ctx context.Context, request mcp.CallToolRequest) (*analyzer.Result, output.Document, error) {
	dir := request.GetString("dir", "./")
	opts := t.opts
	if lang := strings.TrimSpace(request.GetString("language", "")); lang != "" {
		opts.Language = model.Language(strings.ToLower(lang))
	}
	res, err := analyzer.New(opts, t.logger).Analyze(ctx, dir)
	if err != nil {
		return nil, nil, err
	}
	return res, output.BuildDocument(res.Graph), nil
}

func (t *Tools) AnalyzeCoupling(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(request.GetFloat("limit", 20))

	res, doc, err := t.analyze(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to analyze coupling: %v", err)), nil
	}

	report := CouplingReport{
		Root:      res.Root,
		Language:  string(res.Language),
		Files:     res.Files,
		Classes:   len(doc),
		Relations: doc.TopRelations(limit),
	}
	if report.Relations == nil {
		report.Relations = []output.Relation{}
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (t *Tools) ClassCoupling(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	class, err := request.RequireString("class")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	_, doc, err := t.analyze(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to analyze coupling: %v", err)), nil
	}

	cd, ok := doc[class]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("class %s not found (%d classes analysed)", class, len(doc))), nil
	}

	jsonData, err := json.MarshalIndent(cd, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal class: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
