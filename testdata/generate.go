package main

import (
	"log"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

type User struct {
	ID     int64   `parquet:"id"`
	Name   string  `parquet:"name"`
	Age    int32   `parquet:"age"`
	City   string  `parquet:"city"`
	Active bool    `parquet:"active"`
	Score  float64 `parquet:"score"`
}

type Event struct {
	UserID int64     `parquet:"user_id"`
	Kind   string    `parquet:"kind"`
	At     time.Time `parquet:"at,timestamp(millisecond)"`
	Tags   []string  `parquet:"tags,list"`
}

func write[T any](path string, rows []T) {
	file, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		log.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		log.Fatal(err)
	}
	if err := file.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated %s with %d rows", path, len(rows))
}

func main() {
	write("users.parquet", []User{
		{ID: 1, Name: "alice", Age: 30, City: "NYC", Active: true, Score: 95.5},
		{ID: 2, Name: "bob", Age: 25, City: "LA", Active: false, Score: 82.3},
		{ID: 3, Name: "charlie", Age: 35, City: "NYC", Active: true, Score: 88.7},
		{ID: 4, Name: "diana", Age: 28, City: "SF", Active: true, Score: 91.2},
		{ID: 5, Name: "eve", Age: 42, City: "LA", Active: false, Score: 76.8},
	})

	base := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	var events []Event
	kinds := []string{"login", "query", "logout"}
	for i := 0; i < 25; i++ {
		events = append(events, Event{
			UserID: int64(i%5 + 1),
			Kind:   kinds[i%len(kinds)],
			At:     base.Add(time.Duration(i) * 17 * time.Minute),
			Tags:   []string{"web", kinds[i%len(kinds)]},
		})
	}
	write("events.parquet", events)
}
