package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/23skdu/longbow-bowyer/internal/encoder"
	"github.com/23skdu/longbow-bowyer/internal/engine"
)

var (
	numLayers  = flag.Int("layers", 2, "Number of encoder layers")
	dModel     = flag.Int("dmodel", 128, "Model (feature) dimension")
	numHeads   = flag.Int("heads", 2, "Number of attention heads")
	dFF        = flag.Int("dff", 512, "Feed-forward inner dimension")
	dropout    = flag.Float64("dropout", 0.1, "Dropout rate")
	batchSize  = flag.Int("batch", 4, "Batch size of the random input")
	seqLen     = flag.Int("seq", 16, "Sequence length of the random input")
	seed       = flag.Int64("seed", 1, "Seed for parameter init and input data")
	training   = flag.Bool("training", false, "Evaluate in training mode (dropout active)")
	enableOTel = flag.Bool("otel", false, "Enable OpenTelemetry tracing (stdout)")
	arrowOut   = flag.String("arrow-out", "", "Write output embeddings to an Arrow IPC file")
)

func main() {
	// Initialize logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	flag.Parse()

	ctx := context.Background()
	if *enableOTel {
		shutdown, err := initTracer()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Warn().Err(err).Msg("Tracer shutdown failed")
			}
		}()
	}

	cfg := encoder.Config{
		Layers:  *numLayers,
		Dropout: *dropout,
		DModel:  *dModel,
		Heads:   *numHeads,
		DFF:     *dFF,
	}

	backend := engine.NewCPUBackendWithSeed(*seed)
	backend.SetTraining(*training)

	model, err := encoder.NewEncoderStack(cfg, backend)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to construct encoder")
	}

	input := randomInput(backend, *batchSize, *seqLen, cfg.DModel, *seed)

	tracer := otel.Tracer("bowyer")
	ctx, span := tracer.Start(ctx, "build")

	start := time.Now()
	output := model.Build(input)
	elapsed := time.Since(start)

	span.End()

	batch, rows, cols := output.Shape()
	log.Info().
		Int("batch", batch).
		Int("seq", rows).
		Int("d_model", cols).
		Dur("elapsed", elapsed).
		Str("trace_id", trace.SpanContextFromContext(ctx).TraceID().String()).
		Msg("Built encoder graph")

	// Sample of the first output position
	n := cols
	if n > 8 {
		n = 8
	}
	fmt.Printf("output shape: [%d %d %d]\n", batch, rows, cols)
	fmt.Print("output[0][0][:]:")
	for j := 0; j < n; j++ {
		fmt.Printf(" %.6f", output.At(0, 0, j))
	}
	fmt.Println()

	if *arrowOut != "" {
		if err := writeArrowFile(*arrowOut, output); err != nil {
			log.Fatal().Err(err).Msg("Failed to write Arrow file")
		}
		log.Info().Str("path", *arrowOut).Msg("Wrote embeddings")
	}
}

// randomInput builds a deterministic [batch, seq, dim] tensor of uniform
// values in [-1, 1).
func randomInput(backend engine.Backend, batch, seq, dim int, seed int64) engine.Tensor {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, batch*seq*dim)
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	return backend.NewTensor(batch, seq, dim, data)
}

// writeArrowFile serializes the output embeddings as an Arrow IPC stream:
// one row per (batch, seq) position.
func writeArrowFile(path string, output engine.Tensor) error {
	batch, rows, cols := output.Shape()
	host := output.ToHost()

	pool := memory.NewGoAllocator()

	// Schema: { "position": int64, "embedding": fixed_size_list<float64>[d_model] }
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: "position", Type: arrow.PrimitiveTypes.Int64},
			{Name: "embedding", Type: arrow.FixedSizeListOf(int32(cols), arrow.PrimitiveTypes.Float64)},
		},
		nil,
	)

	posBuilder := array.NewInt64Builder(pool)
	defer posBuilder.Release()

	embedBuilder := array.NewFixedSizeListBuilder(pool, int32(cols), arrow.PrimitiveTypes.Float64)
	defer embedBuilder.Release()
	floatBuilder := embedBuilder.ValueBuilder().(*array.Float64Builder)

	total := batch * rows
	for i := 0; i < total; i++ {
		posBuilder.Append(int64(i))

		embedBuilder.Append(true)
		floatBuilder.AppendValues(host[i*cols:(i+1)*cols], nil)
	}

	posArr := posBuilder.NewArray()
	defer posArr.Release()
	embedArr := embedBuilder.NewArray()
	defer embedArr.Release()

	rec := array.NewRecordBatch(schema, []arrow.Array{posArr, embedArr}, int64(total))
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Arrow file")
		}
	}()

	writer := ipc.NewWriter(f, ipc.WithSchema(rec.Schema()))
	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return err
	}
	return writer.Close()
}

func initTracer() (func(context.Context) error, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("bowyer"),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp.Shutdown, nil
}
