// Command quarry inspects and rewrites Arrow IPC stream files using the
// columnar container engine.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quarrydata/quarry/pkg/arrowconv"
	"github.com/quarrydata/quarry/pkg/chunk"
	"github.com/quarrydata/quarry/pkg/column"
	"github.com/quarrydata/quarry/pkg/config"
	"github.com/quarrydata/quarry/pkg/kernel"
	"github.com/quarrydata/quarry/pkg/kind"
	"github.com/quarrydata/quarry/pkg/logger"
)

var version = "0.1.0"

func main() {
	var cfgPath string
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "quarry",
		Short: "Quarry - chunked columnar container engine tools",
		Long: `Quarry inspects, summarizes and rewrites Arrow IPC stream files
(".arrow", or ".zst" for zstd-framed streams) through the chunked
columnar container engine.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			*cfg = *loaded
			return logger.Init(logger.Config{Level: cfg.LogLevel})
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Quarry v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "schema <file>",
		Short: "Print the Arrow schema of a stream file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _, err := readStream(args[0])
			if err != nil {
				return err
			}
			fmt.Println(schema)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "stats <file>",
		Short: "Summarize each column: rows, nulls, sum, min, max",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args[0])
		},
		Args: cobra.ExactArgs(1),
	})

	root.AddCommand(&cobra.Command{
		Use:   "tojson <file>",
		Short: "Print the rows as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToJSON(args[0])
		},
	})

	repack := &cobra.Command{
		Use:   "repack <in> <out>",
		Short: "Rewrite a stream file, re-batching along chunk boundaries",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepack(args[0], args[1], cfg)
		},
	}
	root.AddCommand(repack)

	if err := root.Execute(); err != nil {
		logger.Get().Error("command failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

// openInput opens path, transparently unwrapping zstd frames.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	zr, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &zstdReadCloser{zr: zr, f: f}, nil
}

type zstdReadCloser struct {
	zr *zstd.Decoder
	f  *os.File
}

func (z *zstdReadCloser) Read(p []byte) (int, error) { return z.zr.Read(p) }
func (z *zstdReadCloser) Close() error {
	z.zr.Close()
	return z.f.Close()
}

// readStream loads every record batch from an Arrow IPC stream file.
func readStream(path string) (*arrow.Schema, []arrow.Record, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, nil, err
	}
	defer in.Close()

	r, err := ipc.NewReader(in)
	if err != nil {
		return nil, nil, err
	}
	defer r.Release()

	var recs []arrow.Record
	for r.Next() {
		rec := r.Record()
		rec.Retain()
		recs = append(recs, rec)
	}
	if err := r.Err(); err != nil && err != io.EOF {
		return nil, nil, err
	}
	return r.Schema(), recs, nil
}

func releaseAll(recs []arrow.Record) {
	for _, rec := range recs {
		rec.Release()
	}
}

// columnStats is the JSON shape emitted per column by the stats command.
type columnStats struct {
	Name  string   `json:"name"`
	Kind  string   `json:"kind"`
	Rows  int64    `json:"rows"`
	Nulls int64    `json:"nulls"`
	Sum   *float64 `json:"sum,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
}

func runStats(path string) error {
	log := logger.Get()
	_, recs, err := readStream(path)
	if err != nil {
		return err
	}
	defer releaseAll(recs)

	fields, err := arrowconv.FromRecords(recs)
	if err != nil {
		return err
	}
	log.Info("imported columns", zap.Int("columns", len(fields)))

	out := json.NewEncoder(os.Stdout)
	for _, f := range fields {
		st := columnStats{
			Name:  f.Name,
			Kind:  f.Column.Kind().String(),
			Rows:  f.Column.Len(),
			Nulls: f.Column.NullCount(),
		}
		fillNumericStats(&st, f.Column)
		if err := out.Encode(st); err != nil {
			return err
		}
	}
	return nil
}

// fillNumericStats runs the reduction kernels for kinds with arithmetic
// capability, dispatching once over the closed kind set.
func fillNumericStats(st *columnStats, col column.Any) {
	if !kind.CapabilitiesOf(col.Kind()).Arithmetic {
		return
	}
	switch c := col.(type) {
	case *column.Container[int8]:
		summarize(st, c)
	case *column.Container[int16]:
		summarize(st, c)
	case *column.Container[int32]:
		summarize(st, c)
	case *column.Container[int64]:
		summarize(st, c)
	case *column.Container[uint8]:
		summarize(st, c)
	case *column.Container[uint16]:
		summarize(st, c)
	case *column.Container[uint32]:
		summarize(st, c)
	case *column.Container[uint64]:
		summarize(st, c)
	case *column.Container[float32]:
		summarize(st, c)
	case *column.Container[float64]:
		summarize(st, c)
	}
}

func summarize[T kernel.Numeric](st *columnStats, c *column.Container[T]) {
	sum := float64(kernel.Sum(c))
	st.Sum = &sum
	if v, ok := kernel.Min(c); ok {
		f := float64(v)
		st.Min = &f
	}
	if v, ok := kernel.Max(c); ok {
		f := float64(v)
		st.Max = &f
	}
}

func runToJSON(path string) error {
	_, recs, err := readStream(path)
	if err != nil {
		return err
	}
	defer releaseAll(recs)

	fields, err := arrowconv.FromRecords(recs)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	out := json.NewEncoder(os.Stdout)
	rows := fields[0].Column.Len()
	obj := make(map[string]interface{}, len(fields))
	for row := int64(0); row < rows; row++ {
		for _, f := range fields {
			v, err := valueAt(f.Column, row)
			if err != nil {
				return err
			}
			obj[f.Name] = v
		}
		if err := out.Encode(obj); err != nil {
			return err
		}
	}
	return nil
}

// valueAt reads one row from a type-erased column; null rows come back nil.
func valueAt(col column.Any, row int64) (interface{}, error) {
	switch c := col.(type) {
	case *column.Container[bool]:
		return getAny(c, row)
	case *column.Container[int8]:
		return getAny(c, row)
	case *column.Container[int16]:
		return getAny(c, row)
	case *column.Container[int32]:
		return getAny(c, row)
	case *column.Container[int64]:
		return getAny(c, row)
	case *column.Container[uint8]:
		return getAny(c, row)
	case *column.Container[uint16]:
		return getAny(c, row)
	case *column.Container[uint32]:
		return getAny(c, row)
	case *column.Container[uint64]:
		return getAny(c, row)
	case *column.Container[float32]:
		return getAny(c, row)
	case *column.Container[float64]:
		return getAny(c, row)
	default:
		return nil, fmt.Errorf("no value accessor for kind %s", col.Kind())
	}
}

func getAny[T chunk.Element](c *column.Container[T], row int64) (interface{}, error) {
	v, valid, err := c.Get(row)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, nil
	}
	return v, nil
}

func runRepack(inPath, outPath string, cfg *config.Config) error {
	log := logger.Get()
	_, recs, err := readStream(inPath)
	if err != nil {
		return err
	}
	defer releaseAll(recs)

	fields, err := arrowconv.FromRecords(recs)
	if err != nil {
		return err
	}
	batches, err := arrowconv.ToRecordsLimit(fields, cfg.MaxBatchRows)
	if err != nil {
		return err
	}
	defer releaseAll(batches)

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var sink io.Writer = f
	var zw *zstd.Encoder
	if cfg.Compress || strings.HasSuffix(outPath, ".zst") {
		zw, err = zstd.NewWriter(f)
		if err != nil {
			return err
		}
		sink = zw
	}

	w := ipc.NewWriter(sink, ipc.WithSchema(batches[0].Schema()))
	for _, rec := range batches {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return err
		}
	}
	log.Info("repacked stream",
		zap.String("in", inPath),
		zap.String("out", outPath),
		zap.Int("batches", len(batches)))
	return nil
}
