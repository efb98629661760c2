package output

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/CodMac/go-treesitter-coupling-analyzer/core"
)

// WriteMermaidHTML 生成包含 Mermaid.js 渲染逻辑的静态网页。
// 类按包分组，边为类的出边，标注综合耦合得分。
func WriteMermaidHTML(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)

	// 1. 写入 HTML 模板头部
	bw.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Class Coupling Map</title>
    <script src="https://cdn.jsdelivr.net/npm/mermaid/dist/mermaid.min.js"></script>
    <style>
        body { font-family: -apple-system, sans-serif; background: #f0f2f5; margin: 20px; }
        .mermaid { background: white; padding: 20px; border-radius: 12px; box-shadow: 0 4px 15px rgba(0,0,0,0.1); }
        h1 { color: #1a1a1a; text-align: center; }
    </style>
</head>
<body>
    <h1>Class Coupling</h1>
    <div class="mermaid">
    graph LR
`)

	// 2. 按包分组生成 subgraph
	packageGroups := make(map[string][]string)
	for _, name := range doc.Names() {
		pkg := doc[name].Package.Name
		packageGroups[pkg] = append(packageGroups[pkg], name)
	}
	packages := make([]string, 0, len(packageGroups))
	for pkg := range packageGroups {
		packages = append(packages, pkg)
	}
	sort.Strings(packages)

	for _, pkg := range packages {
		fmt.Fprintf(bw, "    subgraph %s[\"📦 %s\"]\n", safeID("pkg:"+pkg), pkg)
		for _, name := range packageGroups[pkg] {
			cd := doc[name]
			kind := string(cd.Kind)
			if kind == "" {
				kind = "CLASS"
			}
			fmt.Fprintf(bw, "        %s[\"%s <small>(%s)</small>\"]\n", safeID(name), core.SimpleName(name), kind)
		}
		bw.WriteString("    end\n")
	}

	// 3. 出边，标签为综合耦合得分
	for _, name := range doc.Names() {
		cd := doc[name]
		related := make([]string, 0, len(cd.Outgoing))
		for r := range cd.Outgoing {
			related = append(related, r)
		}
		sort.Strings(related)
		for _, r := range related {
			score := cd.RelationMetrics[r].CumulativeNormalisedCoupling
			arrow := "-->"
			if edge := cd.Outgoing[r]; len(edge.Attributes)+len(edge.Constructors)+len(edge.Methods) == 0 {
				// 只有包导入
				arrow = "-.->"
			}
			fmt.Fprintf(bw, "    %s %s|%.2f| %s\n", safeID(name), arrow, score, safeID(r))
		}
	}

	// 4. 写入脚本初始化和结尾
	bw.WriteString(`    </div>
    <script>
        mermaid.initialize({
            startOnLoad: true,
            maxTextSize: 100000,
            theme: 'default',
            flowchart: { useMaxWidth: false, htmlLabels: true }
        });
    </script>
</body>
</html>
`)

	return bw.Flush()
}

// safeID 确保 QualifiedName 符合 Mermaid 的 ID 命名规范
func safeID(id string) string {
	r := strings.NewReplacer(".", "_", "/", "_", "-", "_", "\\", "_", ":", "_", "@", "_", "$", "_")
	return "n_" + r.Replace(id)
}
