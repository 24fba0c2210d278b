// Package clustergo implements partitional clustering around one
// iterate-assign-update loop (Lloyd's scheme) parameterized by swappable
// seeding and center-update strategies:
//
//   - k-means: mean centers, squared-Euclidean metric, k-means++ seeding
//   - k-medians: per-coordinate median centers, Manhattan metric
//   - k-medoids: centers constrained to data points, per-cluster swap search
//   - PAM: greedy BUILD seeding plus the exhaustive single-best-swap search
//
// # Usage
//
//	engine, err := clustergo.NewKMeans(3, clustergo.WithSeed(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := engine.Fit(ctx, points)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Assignment, res.Cost)
//
// Every engine variant is a composition of three pluggable pieces: a
// distance metric (package distance), an initializer (package initializer),
// and a center strategy (package center, or the built-in medoid swap
// search). The constructors above bundle the conventional combinations;
// New with options composes arbitrary ones.
//
// # Determinism
//
// All randomized behavior flows through an injectable pseudo-random source
// (WithSeed / WithRand). PAM is deterministic end to end: BUILD breaks ties
// by lowest index and ignores the rng entirely.
//
// # Evaluation
//
// Package quality scores a finished clustering (silhouette, total cost) and
// selects k (mean-silhouette maximization, elbow curve).
//
// # Persistence
//
// A fitted Model can be written to an io.Writer as a zstd-compressed,
// self-describing snapshot (SaveModel/LoadModel) and used to assign new
// observations without the training data.
package clustergo
