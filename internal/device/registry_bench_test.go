package device

import (
	"context"
	"fmt"
	"testing"
)

// setupBenchRegistry creates a registry pre-populated with n devices.
func setupBenchRegistry(b *testing.B, n int) *Registry {
	b.Helper()
	repo := NewMockRepository()
	ctx := context.Background()

	for i := 0; i < n; i++ {
		class := ClassBulb
		if i%10 == 0 {
			class = ClassDiffuser
		}
		dev := &Device{
			MAC:                fmt.Sprintf("B0:CE:18:10:%02X:%02X", i/256, i%256),
			Name:               fmt.Sprintf("Device %d", i),
			Model:              "W21-N13",
			Class:              class,
			SupportsBrightness: true,
			State:              State{On: true, Brightness: 128},
			Online:             true,
		}
		if err := repo.Upsert(ctx, dev); err != nil {
			b.Fatalf("creating device %d: %v", i, err)
		}
	}

	reg := NewRegistry(repo)
	if err := reg.RefreshCache(ctx); err != nil {
		b.Fatalf("refreshing cache: %v", err)
	}
	return reg
}

func BenchmarkRegistryGetDevice(b *testing.B) {
	reg := setupBenchRegistry(b, 100)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.GetDevice(ctx, "B0:CE:18:10:00:32") //nolint:errcheck // benchmark
	}
}

func BenchmarkRegistryGetDevice_Parallel(b *testing.B) {
	reg := setupBenchRegistry(b, 100)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			reg.GetDevice(ctx, "B0:CE:18:10:00:32") //nolint:errcheck // benchmark
		}
	})
}

func BenchmarkRegistrySetDeviceState(b *testing.B) {
	reg := setupBenchRegistry(b, 100)
	ctx := context.Background()
	state := State{On: true, Brightness: 192}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.SetDeviceState(ctx, "B0:CE:18:10:00:32", state) //nolint:errcheck // benchmark
	}
}

func BenchmarkRegistryGetDevicesByClass(b *testing.B) {
	reg := setupBenchRegistry(b, 200)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.GetDevicesByClass(ctx, ClassBulb) //nolint:errcheck // benchmark
	}
}

func BenchmarkRegistryRefreshCache(b *testing.B) {
	repo := NewMockRepository()
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		dev := &Device{
			MAC:   fmt.Sprintf("B0:CE:18:10:%02X:%02X", i/256, i%256),
			Name:  fmt.Sprintf("Device %d", i),
			Class: ClassBulb,
		}
		if err := repo.Upsert(ctx, dev); err != nil {
			b.Fatalf("creating device %d: %v", i, err)
		}
	}

	reg := NewRegistry(repo)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reg.RefreshCache(ctx) //nolint:errcheck // benchmark
	}
}
