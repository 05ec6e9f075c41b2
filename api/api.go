package api

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/voxelsplace/isonets/chunk"
	"github.com/voxelsplace/isonets/config"
	"github.com/voxelsplace/isonets/mesh"
	"github.com/voxelsplace/isonets/pack"
	"github.com/voxelsplace/isonets/world"
)

const generator = "isonets"

// GenerateWorld builds every chunk of the configured lattice and collects
// the meshes into a pack in retirement order. A nil logger discards output.
func GenerateWorld(ctx context.Context, cfg *config.Config, logger *log.Logger) (*pack.Pack, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	field, err := cfg.Field()
	if err != nil {
		return nil, err
	}
	sc := cfg.Scheduler()
	s, err := world.NewScheduler(sc, field, world.WithSchedulerLogger(logger))
	if err != nil {
		return nil, err
	}

	p := pack.New(sc.Chunk.Dims, sc.Spacing)
	err = world.Run(ctx, s, cfg.TickInterval(), func(r world.Result) error {
		p.Add(pack.Entry{Position: r.Position, Origin: r.Origin, Mesh: r.Mesh})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GeneratePack parses a YAML config (empty means defaults), generates the
// world and returns the encoded pack.
func GeneratePack(ctx context.Context, configYAML []byte) ([]byte, error) {
	cfg, err := config.Parse(configYAML, nil)
	if err != nil {
		return nil, err
	}
	p, err := GenerateWorld(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}
	return p.Marshal(cfg.Compression())
}

// PackToGLB converts pack bytes into a .glb with one node per non-empty
// chunk, placed at its world origin.
func PackToGLB(packBytes []byte) ([]byte, error) {
	p, _, err := pack.Unmarshal(packBytes)
	if err != nil {
		return nil, err
	}
	parts := make([]mesh.Part, 0, len(p.Entries))
	for _, e := range p.Entries {
		parts = append(parts, mesh.Part{Name: ChunkName(e.Position), Mesh: e.Mesh, Origin: e.Origin.Array()})
	}
	doc, err := mesh.Document(generator, parts...)
	if err != nil {
		return nil, err
	}
	return mesh.EncodeGLB(doc)
}

// ChunkGLB builds the single chunk at pos under the given YAML config and
// returns it as a .glb in world coordinates.
func ChunkGLB(configYAML []byte, pos chunk.Position) ([]byte, error) {
	cfg, err := config.Parse(configYAML, nil)
	if err != nil {
		return nil, err
	}
	m, origin, err := BuildChunk(cfg, pos)
	if err != nil {
		return nil, err
	}
	doc, err := mesh.Document(generator, mesh.Part{Name: ChunkName(pos), Mesh: m, Origin: origin.Array()})
	if err != nil {
		return nil, err
	}
	return mesh.EncodeGLB(doc)
}

// BuildChunk ticks one generator to completion outside any scheduler. The
// mesh is chunk-local; the returned origin places it in the world.
func BuildChunk(cfg *config.Config, pos chunk.Position) (*mesh.Mesh, chunk.Origin, error) {
	field, err := cfg.Field()
	if err != nil {
		return nil, chunk.Origin{}, err
	}
	sc := cfg.Scheduler()
	origin := pos.Origin(sc.Spacing)
	g, err := chunk.NewGenerator(pos, origin, sc.Chunk, field, chunk.WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		return nil, chunk.Origin{}, err
	}
	for !g.IsComplete() {
		g.Tick()
	}
	m, err := g.Mesh()
	return m, origin, err
}

// ChunkName is the file and node name used for the chunk at pos.
func ChunkName(pos chunk.Position) string {
	return fmt.Sprintf("chunk_%d_%d_%d", pos.X, pos.Y, pos.Z)
}
