// Package cluster groups a batch of articles by text similarity. Articles are
// vectorized with TF-IDF over a capped vocabulary and partitioned with k-means
// into at most MaxClusters groups. The grouping is best-effort: any internal
// failure leaves every article in cluster 0 and never aborts the caller's
// pipeline.
package cluster

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/kurakani/kurakani/models"
)

const (
	// MaxClusters caps the number of groups per batch.
	MaxClusters = 5
	// MaxFeatures caps the vocabulary size.
	MaxFeatures = 500

	randomSeed    = 42
	maxIterations = 100
)

// Assign labels each article with a cluster id in [0, k) where
// k = min(MaxClusters, number of articles with content). Articles with empty
// content always get cluster 0. The same batch with the same parameters
// always produces the same labels.
func Assign(articles []models.Article) []models.Article {
	for i := range articles {
		articles[i].ClusterID = 0
	}
	if len(articles) == 0 {
		return articles
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("clustering failed, falling back to single cluster", "panic", r)
			for i := range articles {
				articles[i].ClusterID = 0
			}
		}
	}()

	var valid []int
	for i, a := range articles {
		if strings.TrimSpace(a.Content) != "" {
			valid = append(valid, i)
		}
	}
	if len(valid) == 0 {
		slog.Warn("no articles with content to cluster")
		return articles
	}

	contents := make([]string, len(valid))
	for i, idx := range valid {
		contents[i] = articles[idx].Content
	}

	vectors := vectorize(contents)
	if vectors == nil {
		// Vocabulary came out empty (stop words only); nothing to group on.
		return articles
	}

	k := len(valid)
	if k > MaxClusters {
		k = MaxClusters
	}

	labels := kmeans(vectors, k)
	for i, idx := range valid {
		articles[idx].ClusterID = labels[i]
	}

	slog.Info("clustered articles", "articles", len(valid), "clusters", k)
	return articles
}

// vectorize builds L2-normalized TF-IDF vectors over the MaxFeatures most
// frequent non-stop-word terms. Returns nil when no usable term exists.
func vectorize(docs []string) [][]float64 {
	tokenized := make([][]string, len(docs))
	termTotal := make(map[string]int)
	docFreq := make(map[string]int)
	for i, doc := range docs {
		tokens := tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[string]bool)
		for _, t := range tokens {
			termTotal[t]++
			if !seen[t] {
				seen[t] = true
				docFreq[t]++
			}
		}
	}
	if len(termTotal) == 0 {
		return nil
	}

	// Keep the top terms by collection frequency; alphabetical tie-break
	// keeps the vocabulary deterministic.
	terms := make([]string, 0, len(termTotal))
	for t := range termTotal {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termTotal[terms[i]] != termTotal[terms[j]] {
			return termTotal[terms[i]] > termTotal[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > MaxFeatures {
		terms = terms[:MaxFeatures]
	}
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		// Smoothed IDF, always positive.
		idf[i] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}

	vectors := make([][]float64, len(docs))
	for i, tokens := range tokenized {
		vec := make([]float64, len(terms))
		for _, t := range tokens {
			if j, ok := vocab[t]; ok {
				vec[j] += 1
			}
		}
		for j := range vec {
			vec[j] *= idf[j]
		}
		normalizeVec(vec)
		vectors[i] = vec
	}
	return vectors
}

func tokenize(doc string) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 || stopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func normalizeVec(vec []float64) {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

// kmeans partitions the vectors into k groups with a fixed-seed kmeans++
// initialization, so repeated runs over the same batch agree.
func kmeans(vectors [][]float64, k int) []int {
	rng := rand.New(rand.NewSource(randomSeed))
	centroids := seedCentroids(vectors, k, rng)
	labels := make([]int, len(vectors))

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, vec := range vectors {
			best := nearest(vec, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		dim := len(vectors[0])
		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, vec := range vectors {
			c := labels[i]
			counts[c]++
			for j, v := range vec {
				sums[c][j] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Re-seed an emptied cluster on the point farthest from
				// its centroid.
				far := farthest(vectors, centroids, labels)
				copy(sums[c], vectors[far])
				labels[far] = c
				counts[c] = 1
			}
			for j := range sums[c] {
				sums[c][j] /= float64(counts[c])
			}
			centroids[c] = sums[c]
		}
	}
	return labels
}

// seedCentroids picks k starting centroids kmeans++-style: the first
// uniformly, each next weighted by squared distance to the nearest chosen one.
func seedCentroids(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := rng.Intn(len(vectors))
	centroids = append(centroids, append([]float64(nil), vectors[first]...))

	for len(centroids) < k {
		dists := make([]float64, len(vectors))
		var total float64
		for i, vec := range vectors {
			d := math.Inf(1)
			for _, c := range centroids {
				if dd := sqDist(vec, c); dd < d {
					d = dd
				}
			}
			dists[i] = d
			total += d
		}
		var next int
		if total == 0 {
			next = rng.Intn(len(vectors))
		} else {
			target := rng.Float64() * total
			var acc float64
			for i, d := range dists {
				acc += d
				if acc >= target {
					next = i
					break
				}
			}
		}
		centroids = append(centroids, append([]float64(nil), vectors[next]...))
	}
	return centroids
}

func nearest(vec []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(vec, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func farthest(vectors [][]float64, centroids [][]float64, labels []int) int {
	best, bestDist := 0, -1.0
	for i, vec := range vectors {
		if d := sqDist(vec, centroids[labels[i]]); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
