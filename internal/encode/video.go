package encode

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/log"

	"marble-derby/internal/config"
	"marble-derby/internal/cue"
	"marble-derby/internal/render"
	"marble-derby/internal/sim"
)

// VideoConfig parameterizes an ffmpeg export.
type VideoConfig struct {
	OutPath string
	Audio   config.AudioConfig
}

// ExportVideo encodes the whole trace as H.264 video with the
// collision cues mixed into an AAC track. Raw RGBA frames go to ffmpeg
// on stdin, s16le PCM on fd 3, exactly one audio chunk per video frame
// so the streams stay in sync.
func ExportVideo(tr *sim.Trace, comp *render.Compositor, vc VideoConfig) error {
	args := []string{
		"-y",
		// Video input (pipe:0 - stdin)
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", tr.Width, tr.Height),
		"-r", fmt.Sprintf("%d", tr.FPS),
		"-i", "pipe:0",
		// Audio input (pipe:3 via ExtraFiles)
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", vc.Audio.SampleRate),
		"-ac", "2",
		"-i", "pipe:3",
		// Encoding
		"-c:v", "libx264",
		"-preset", "medium",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "128k",
		"-map", "0:v",
		"-map", "1:a",
		"-shortest",
		vc.OutPath,
	}

	cmd := exec.Command("ffmpeg", args...)
	cmd.Stderr = os.Stderr

	videoPipe, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("encode: video pipe: %w", err)
	}

	audioReader, audioWriter, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("encode: audio pipe: %w", err)
	}
	cmd.ExtraFiles = []*os.File{audioReader} // fd 3

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("encode: start ffmpeg: %w", err)
	}
	audioReader.Close()

	// Video and audio feed ffmpeg concurrently; each loop walks the
	// trace independently so neither blocks the other on pipe pressure.
	videoErr := make(chan error, 1)
	go func() {
		defer videoPipe.Close()
		buf := make([]byte, render.FrameBytes(tr.Width, tr.Height))
		for frame := 0; frame < tr.Len(); frame++ {
			render.ImageToRGBA(comp.Render(tr.At(frame)), buf)
			if _, err := videoPipe.Write(buf); err != nil {
				videoErr <- fmt.Errorf("encode: write frame %d: %w", frame, err)
				return
			}
		}
		videoErr <- nil
	}()

	audioErr := make(chan error, 1)
	go func() {
		defer audioWriter.Close()
		mixer := cue.NewPCMMixer(vc.Audio, tr.FPS)
		for frame := 0; frame < tr.Len(); frame++ {
			for _, ev := range tr.EventsAt(frame) {
				mixer.Queue(ev.Velocity)
			}
			if _, err := audioWriter.Write(mixer.GenerateFrame()); err != nil {
				audioErr <- fmt.Errorf("encode: write audio for frame %d: %w", frame, err)
				return
			}
		}
		audioErr <- nil
	}()

	vErr := <-videoErr
	aErr := <-audioErr

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("encode: ffmpeg: %w", err)
	}
	if vErr != nil {
		return vErr
	}
	if aErr != nil {
		return aErr
	}

	log.Info("video exported", "path", vc.OutPath, "frames", tr.Len())
	return nil
}
