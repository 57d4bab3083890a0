package todo

import (
	"bytes"
	"fmt"
	"testing"
	"time"
)

func benchTodos(n int) []Todo {
	f := DefaultFactory()
	todos := make([]Todo, 0, n)
	for i := 0; i < n; i++ {
		p := Priorities()[i%3]
		td := f.New(fmt.Sprintf("Task %d", i), baseTime.Add(time.Duration(i%17)*day), p)
		td.Completed = i%4 == 0
		todos = append(todos, td)
	}
	return todos
}

// BenchmarkQuery benchmarks filtering and sorting a personal-scale list.
func BenchmarkQuery(b *testing.B) {
	todos := benchTodos(200)
	filter := Filter{Status: StatusPending, Priority: PriorityHigh}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Query(todos, filter, SortDeadline)
	}
}

// BenchmarkDecode benchmarks parsing a stored collection with 100 todos.
func BenchmarkDecode(b *testing.B) {
	data, err := Encode(benchTodos(100))
	if err != nil {
		b.Fatalf("Encode failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(data); err != nil {
			b.Fatalf("Decode failed: %v", err)
		}
	}
}

// BenchmarkImport benchmarks import including schema validation.
func BenchmarkImport(b *testing.B) {
	var buf bytes.Buffer
	if err := Export(&buf, benchTodos(100)); err != nil {
		b.Fatalf("Export failed: %v", err)
	}
	data := buf.Bytes()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Import(data, ValidationOptions{}); err != nil {
			b.Fatalf("Import failed: %v", err)
		}
	}
}
