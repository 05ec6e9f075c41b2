package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/voxelsplace/isonets/api"
	"github.com/voxelsplace/isonets/mesh"
	"github.com/voxelsplace/isonets/pack"
)

// RunPack2GLB converts a .isopack into a single .glb. Each chunk becomes one
// node, already placed at its world origin.
func RunPack2GLB(inPackPath, outGlbPath string) error {
	data, err := os.ReadFile(inPackPath)
	if err != nil {
		return err
	}
	glb, err := api.PackToGLB(data)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outGlbPath, glb, 0o644); err != nil {
		return err
	}
	fmt.Printf(".glb saved (%d bytes)\n", len(glb))
	return nil
}

// RunUnpack writes one .glb per non-empty chunk of a .isopack into outDir,
// named after the chunk position.
func RunUnpack(inPackPath, outDir string) error {
	data, err := os.ReadFile(inPackPath)
	if err != nil {
		return err
	}
	p, _, err := pack.Unmarshal(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	var wg sync.WaitGroup
	errCh := make(chan error, len(p.Entries))
	for _, e := range p.Entries {
		if e.Mesh.IsEmpty() {
			continue
		}
		wg.Add(1)
		go func(e pack.Entry) {
			defer wg.Done()
			name := api.ChunkName(e.Position)
			doc, err := mesh.Document("isonets", mesh.Part{Name: name, Mesh: e.Mesh, Origin: e.Origin.Array()})
			if err != nil {
				errCh <- fmt.Errorf("%s: %w", name, err)
				return
			}
			if err := mesh.SaveGLB(doc, filepath.Join(outDir, name+".glb")); err != nil {
				errCh <- err
			}
		}(e)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}
