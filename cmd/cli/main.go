package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"btc-basis/internal/analysis"
	"btc-basis/internal/basis"
	"btc-basis/internal/config"
	"btc-basis/internal/data"
	"btc-basis/internal/model"

	"github.com/charmbracelet/glamour"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "compute":
		cmdCompute(os.Args[2:])
	case "table":
		cmdTable(os.Args[2:])
	case "chart":
		cmdChart(os.Args[2:])
	case "compare":
		cmdCompare(os.Args[2:])
	case "sample":
		cmdSample(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli compute --in transactions.csv --method LIFO --out results/btcBasis.csv")
	fmt.Println("  cli table   --in transactions.xlsx --method FIFO")
	fmt.Println("  cli chart   --in transactions.csv --metrics price,cost_basis --out chart.json")
	fmt.Println("  cli compare --in transactions.csv")
	fmt.Println("  cli sample  --out btcBasis_file_format.csv")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - input columns: timestamp, txn_amount_btc (+buy/-sell), exchange_rate_usd")
	fmt.Println("  - --policy strict aborts on sales larger than the open position; lenient clamps at zero")
	fmt.Println("  - --config reads defaults for method and policy from a YAML file")
}

type runFlags struct {
	in     *string
	method *string
	policy *string
	config *string
}

func addRunFlags(fs *flag.FlagSet) runFlags {
	return runFlags{
		in:     fs.String("in", "", "Path to transactions (.csv or .xlsx)"),
		method: fs.String("method", "", "Lot matching method: FIFO or LIFO (default from config, else LIFO)"),
		policy: fs.String("policy", "", "Oversell policy: strict or lenient (default from config, else strict)"),
		config: fs.String("config", os.Getenv("BTCBASIS_CONFIG"), "Path to YAML config (optional)"),
	}
}

// settings resolves method and policy: flags win over config, config over defaults.
func (f runFlags) settings() (model.Method, basis.Policy) {
	cfg, err := config.Load(*f.config)
	if err != nil {
		fail(err)
	}
	if *f.method != "" {
		cfg.Basis.Method = *f.method
	}
	if *f.policy != "" {
		cfg.Basis.Policy = *f.policy
	}
	method, err := cfg.Method()
	if err != nil {
		fail(err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		fail(err)
	}
	return method, policy
}

func (f runFlags) run() *basis.Result {
	method, policy := f.settings()
	return compute(*f.in, method, policy)
}

func compute(path string, method model.Method, policy basis.Policy) *basis.Result {
	if path == "" {
		fmt.Println("--in is required")
		os.Exit(2)
	}
	tbl, err := data.LoadFile(path)
	if err != nil {
		fail(err)
	}
	txs, err := data.Normalize(tbl)
	if err != nil {
		fail(err)
	}
	res, err := basis.New(policy).Run(txs, method)
	if err != nil {
		fail(err)
	}
	return res
}

func cmdCompute(args []string) {
	fs := flag.NewFlagSet("compute", flag.ExitOnError)
	rf := addRunFlags(fs)
	outPath := fs.String("out", "", "Output CSV path (default btcBasis_transaction_history_<unix>.csv)")
	_ = fs.Parse(args)

	res := rf.run()
	if *outPath == "" {
		*outPath = basis.ExportFileName(time.Now())
	}
	if dir := filepath.Dir(*outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fail(err)
		}
	}
	if err := basis.WriteLedgerCSVFile(*outPath, res.Rows); err != nil {
		fail(err)
	}

	fmt.Printf("Wrote %d rows to %s\n", len(res.Rows), *outPath)
	fmt.Println(summaryLine(res.Method, res.Final()))
}

func cmdTable(args []string) {
	fs := flag.NewFlagSet("table", flag.ExitOnError)
	rf := addRunFlags(fs)
	width := fs.Int("width", 120, "Word wrap width")
	raw := fs.Bool("raw", false, "Print the Markdown without terminal styling")
	_ = fs.Parse(args)

	res := rf.run()
	md := ledgerMarkdown(res)
	if *raw {
		fmt.Print(md)
		return
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(*width))
	if err != nil {
		fail(err)
	}
	out, err := r.Render(md)
	if err != nil {
		fail(err)
	}
	fmt.Print(out)
}

func cmdChart(args []string) {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	rf := addRunFlags(fs)
	metricList := fs.String("metrics", "", "Comma-separated metrics (default: price,cost_basis)")
	outPath := fs.String("out", "", "Output JSON path (default stdout)")
	_ = fs.Parse(args)

	metrics, err := model.ParseMetrics(*metricList)
	if err != nil {
		fail(err)
	}
	res := rf.run()
	series := analysis.BuildSeries(res.Rows, metrics)

	w := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fail(err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(series); err != nil {
		fail(err)
	}
}

func cmdCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	rf := addRunFlags(fs)
	_ = fs.Parse(args)

	_, policy := rf.settings()
	var results []*basis.Result
	for _, m := range model.Methods() {
		results = append(results, compute(*rf.in, m, policy))
	}

	fmt.Printf("%-4s %-6s %-16s %-18s %-18s\n", "rank", "method", "net BTC", "cost basis", "P&L")
	for i, o := range analysis.RankMethods(results) {
		fmt.Printf("%-4d %-6s %-16s %-18s %-18s\n",
			i+1,
			o.Method,
			o.Summary.NetBTC.String(),
			usdNull(o.Summary.CostBasisUSD),
			usdNull(o.Summary.GainLossUSD),
		)
	}
}

func cmdSample(args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	outPath := fs.String("out", "btcBasis_file_format.csv", "Output path")
	_ = fs.Parse(args)

	if err := os.WriteFile(*outPath, []byte(data.SampleCSV), 0o644); err != nil {
		fail(err)
	}
	fmt.Printf("Wrote sample file format to %s\n", *outPath)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
