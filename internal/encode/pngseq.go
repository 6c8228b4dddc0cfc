// Package encode exports a precomputed trace to files: a PNG frame
// sequence, or an encoded video with the collision cues mixed in.
package encode

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"marble-derby/internal/render"
	"marble-derby/internal/sim"
)

// PNGSequence renders every frame of the trace into dir as
// frame-00000.png .. frame-NNNNN.png. The trace is read-only, so
// frames render in parallel across a worker pool; each worker gets
// its own compositor because font faces are not goroutine-safe.
func PNGSequence(tr *sim.Trace, newCompositor func() *render.Compositor, dir string, workers int) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > 16 {
		workers = 16
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("encode: create output dir: %w", err)
	}

	jobs := make(chan int, workers*2)
	errCh := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			comp := newCompositor()
			failed := false
			for frame := range jobs {
				// Keep draining after a failure so the producer never
				// blocks on a full channel.
				if failed {
					continue
				}
				if err := writeFrame(tr, comp, dir, frame); err != nil {
					select {
					case errCh <- err:
					default:
					}
					failed = true
				}
			}
		}()
	}

	for frame := 0; frame < tr.Len(); frame++ {
		jobs <- frame
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

func writeFrame(tr *sim.Trace, comp *render.Compositor, dir string, frame int) error {
	img := comp.Render(tr.At(frame))

	path := filepath.Join(dir, fmt.Sprintf("frame-%05d.png", frame))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("encode: create %s: %w", path, err)
	}
	defer f.Close()

	if err := render.EncodePNG(f, img); err != nil {
		return fmt.Errorf("encode: write %s: %w", path, err)
	}
	return nil
}
