package distances

import (
	"testing"
)

// --- Pairwise Distances ---

func benchDistanceMatrix(b *testing.B, n int) {
	b.Helper()
	dims := 2
	ps := mustPointSet(b, generateFlatData(n, dims, 42), n, dims)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DistanceMatrix(ps, All()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDistanceMatrix_100(b *testing.B)  { benchDistanceMatrix(b, 100) }
func BenchmarkDistanceMatrix_500(b *testing.B)  { benchDistanceMatrix(b, 500) }
func BenchmarkDistanceMatrix_1000(b *testing.B) { benchDistanceMatrix(b, 1000) }

// --- Index construction ---

func benchOpen(b *testing.B, kind TreeKind, n, dims int) {
	b.Helper()
	ps := mustPointSet(b, generateFlatData(n, dims, 42), n, dims)
	e := newTestEngine(b, kind)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		idx, err := e.Open(ps, All())
		if err != nil {
			b.Fatal(err)
		}
		_ = idx.Close()
	}
}

func BenchmarkOpenKDTree_10000(b *testing.B)   { benchOpen(b, TreeKD, 10000, 3) }
func BenchmarkOpenBallTree_10000(b *testing.B) { benchOpen(b, TreeBall, 10000, 3) }

// --- KNN queries ---

func benchSearch(b *testing.B, kind TreeKind, n, dims, k int) {
	b.Helper()
	ps := mustPointSet(b, generateFlatData(n, dims, 42), n, dims)
	e := newTestEngine(b, kind)
	idx := openIndex(b, e, ps, All())
	defer idx.Close()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.Search(All(), k); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSearchKDTree_5000_2d(b *testing.B)    { benchSearch(b, TreeKD, 5000, 2, 5) }
func BenchmarkSearchKDTree_5000_10d(b *testing.B)   { benchSearch(b, TreeKD, 5000, 10, 5) }
func BenchmarkSearchBallTree_5000_2d(b *testing.B)  { benchSearch(b, TreeBall, 5000, 2, 5) }
func BenchmarkSearchBallTree_5000_10d(b *testing.B) { benchSearch(b, TreeBall, 5000, 10, 5) }

func BenchmarkSearchRadius_5000(b *testing.B) {
	n, dims := 5000, 2
	ps := mustPointSet(b, generateFlatData(n, dims, 42), n, dims)
	e := newTestEngine(b, TreeKD)
	idx := openIndex(b, e, ps, All())
	defer idx.Close()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.SearchRadius(All(), 5, 2); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Farthest points ---

func BenchmarkFarthestPoints_1000(b *testing.B) {
	n, dims := 1000, 3
	ps := mustPointSet(b, generateFlatData(n, dims, 42), n, dims)
	s, err := NewFarthestScanner(ps, All())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Scan(All()); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Normalized datasets ---

func BenchmarkNewDataset_Mahalanobize_5000(b *testing.B) {
	n, dims := 5000, 8
	data := generateFlatData(n, dims, 42)
	opts := DatasetOptions{Normalize: NormalizeMahalanobize}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewDataset(data, n, dims, opts); err != nil {
			b.Fatal(err)
		}
	}
}
