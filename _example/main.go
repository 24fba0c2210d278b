package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/hupe1980/clustergo"
	"github.com/hupe1980/clustergo/distance"
	"github.com/hupe1980/clustergo/quality"
)

func main() {
	seed := int64(4711)
	dim := 8
	perCluster := 2000
	k := 5

	rng := rand.New(rand.NewSource(seed))
	points := blobs(rng, k, perCluster, dim)

	logger := clustergo.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	collector := &clustergo.BasicMetricsCollector{}

	engine, err := clustergo.NewKMeans(k,
		clustergo.WithSeed(seed),
		clustergo.WithLogger(logger),
		clustergo.WithMetricsCollector(collector),
		clustergo.WithParallelism(4),
	)
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	res, err := engine.Fit(context.Background(), points)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("fit: %d iterations, cost %.2f, converged=%v (%s)\n",
		res.Iterations, res.Cost, res.Converged, time.Since(start))

	score, err := quality.MeanSilhouette(points[:500], res.Assignment[:500], distance.Euclidean)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("mean silhouette (sample): %.3f\n", score)

	model, err := clustergo.NewModel(distance.MetricSquaredEuclidean, res)
	if err != nil {
		log.Fatal(err)
	}

	var buf bytes.Buffer
	if err := clustergo.SaveModel(&buf, model, nil); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("snapshot: %d bytes\n", buf.Len())

	loaded, err := clustergo.LoadModel(&buf)
	if err != nil {
		log.Fatal(err)
	}

	assignment, err := loaded.Predict(points[:3])
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("predicted clusters for first points: %v\n", assignment)

	stats := collector.GetStats()
	fmt.Printf("fits=%d avg=%s\n", stats.FitCount, time.Duration(stats.FitAvgNanos))
}

// blobs samples k Gaussian clusters with well-separated centers.
func blobs(rng *rand.Rand, k, perCluster, dim int) [][]float64 {
	points := make([][]float64, 0, k*perCluster)
	for c := 0; c < k; c++ {
		center := make([]float64, dim)
		for d := range center {
			center[d] = float64(rng.Intn(100))
		}
		for i := 0; i < perCluster; i++ {
			p := make([]float64, dim)
			for d := range p {
				p[d] = center[d] + rng.NormFloat64()
			}
			points = append(points, p)
		}
	}
	return points
}
