package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/voxelsplace/isonets/api"
	"github.com/voxelsplace/isonets/config"
)

// RunGenerate builds the world described by cfgPath (empty means defaults)
// and writes it to outPath as a pack. Interrupting the process stops the run
// before the file is written.
func RunGenerate(cfgPath, outPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.New(os.Stderr, "isonets: ", log.LstdFlags)
	start := time.Now()
	p, err := api.GenerateWorld(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("generate world: %w", err)
	}
	data, err := p.Marshal(cfg.Compression())
	if err != nil {
		return fmt.Errorf("encode pack: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return err
	}

	var verts, tris int
	for _, e := range p.Entries {
		verts += e.Mesh.VertexCount()
		tris += e.Mesh.TriangleCount()
	}
	fmt.Printf("%d chunks, %d vertices, %d triangles in %d ms\n", len(p.Entries), verts, tris, time.Since(start).Milliseconds())
	fmt.Printf(".isopack saved (%d bytes, %s)\n", len(data), cfg.Compression())
	return nil
}

// RunDefaultConfig writes the default configuration as YAML, to stdout when
// outPath is empty.
func RunDefaultConfig(outPath string) error {
	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
