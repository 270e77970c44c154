//go:build integration
// +build integration

package benchmarks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/kennethmarkhui/inventory-api/internal/adapters/db"
	"github.com/kennethmarkhui/inventory-api/internal/adapters/storage"
	"github.com/kennethmarkhui/inventory-api/internal/core/domain"
	"github.com/kennethmarkhui/inventory-api/internal/core/ports"
	"github.com/kennethmarkhui/inventory-api/internal/core/services"
	"github.com/kennethmarkhui/inventory-api/test/helpers"
)

func BenchmarkCatalogOperations(b *testing.B) {
	testDB := helpers.SetupTestDB(&testing.T{})
	defer testDB.Database.Close()

	logger := helpers.TestLogger()
	tmpDir, err := os.MkdirTemp("", "bench-uploads-*")
	if err != nil {
		b.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	store, err := storage.NewLocalStore(tmpDir, logger)
	if err != nil {
		b.Fatal(err)
	}

	repo := db.NewItemRepository(testDB.Database, logger)
	service := services.NewCatalogService(repo, store, nil, nil, logger)
	ctx := context.Background()

	pngPayload := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 1024)...)

	b.Run("Create", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			item := helpers.CreateTestItem(func(it *domain.Item) {
				it.RefID = fmt.Sprintf("BENCH-CREATE-%d", i)
			})
			upload := &ports.ItemUpload{
				Reader:      bytes.NewReader(pngPayload),
				Filename:    "bench.png",
				ContentType: "image/png",
			}
			_, _ = service.Create(ctx, item, upload)
		}
	})

	// Pre-create items for the read benchmarks.
	items := make([]*domain.Item, 100)
	for i := range items {
		item := helpers.CreateTestItem(func(it *domain.Item) {
			it.RefID = fmt.Sprintf("BENCH-READ-%d", i)
		})
		created, err := service.Create(ctx, item, &ports.ItemUpload{
			Reader:      bytes.NewReader(pngPayload),
			Filename:    "bench.png",
			ContentType: "image/png",
		})
		if err != nil {
			b.Fatal(err)
		}
		items[i] = created
	}

	b.Run("Read", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.GetByID(ctx, items[i%len(items)].ID)
		}
	})

	b.Run("List", func(b *testing.B) {
		params := ports.ListParams{Page: 1, PageSize: 50}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.List(ctx, params)
		}
	})

	b.Run("Update", func(b *testing.B) {
		name := "Benchmark Renamed"
		changes := &ports.ItemChanges{Name: &name}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = service.Update(ctx, items[i%len(items)].ID, changes, nil)
		}
	})
}

func BenchmarkFileAcceptance(b *testing.B) {
	logger := helpers.TestLogger()
	tmpDir, err := os.MkdirTemp("", "bench-accept-*")
	if err != nil {
		b.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	store, err := storage.NewLocalStore(tmpDir, logger)
	if err != nil {
		b.Fatal(err)
	}

	payload := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 256*1024)...)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		stored, err := store.Accept(ctx, bytes.NewReader(payload), "image/png")
		if err != nil {
			b.Fatal(err)
		}
		_ = store.Discard(ctx, stored.Path)
	}
}
