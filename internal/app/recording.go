// ABOUTME: Recording operations on the controller
// ABOUTME: Start/stop, elapsed-time status and processing the captured clip
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/harperreed/flipit/internal/capture"
	"github.com/harperreed/flipit/pkg/clock"
	"github.com/harperreed/flipit/pkg/transport"
)

func recordingLabel(kind Kind) string {
	if kind == KindMimic {
		return "Recording mimic"
	}
	return "Recording original"
}

// StartRecording stops playback and begins capturing a clip
func (c *Controller) StartRecording(kind Kind) error {
	return c.Do(func() error {
		return c.startRecording(kind)
	})
}

// StopRecording ends the current recording; the clip is processed once the
// recorder hands it back
func (c *Controller) StopRecording() error {
	return c.Do(func() error {
		c.stopRecording()
		return nil
	})
}

// ToggleRecording stops any recording, or starts one for kind
func (c *Controller) ToggleRecording(kind Kind) error {
	return c.Do(func() error {
		if c.recording != nil {
			c.stopRecording()
			return nil
		}
		return c.startRecording(kind)
	})
}

func (c *Controller) startRecording(kind Kind) error {
	if c.recording != nil {
		return fmt.Errorf("%w: already recording %s", ErrRecording, c.recording.kind)
	}
	if c.cfg.Recorder == nil {
		c.transportStatus = statusRecordingUnsupported
		return fmt.Errorf("%w: %v", ErrRecording, capture.ErrUnsupported)
	}

	c.engine.StopAll(false)

	session, err := c.cfg.Recorder.Start(c.runCtx)
	if err != nil {
		log.Printf("Failed to start recording: %v", err)
		status, classified := captureError(err)
		c.transportStatus = status
		return classified
	}

	rec := &recording{
		kind:     kind,
		session:  session,
		stopTick: make(chan struct{}),
	}
	c.recording = rec

	label := recordingLabel(kind)
	c.transportStatus = label + "..."
	c.setPanelStatus(kind, statusRecordingPanel)
	log.Printf("%s (ceiling %s)", label, session.MaxDuration())

	go func() {
		ticker := time.NewTicker(recordingTickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-rec.stopTick:
				return
			case <-ticker.C:
				c.post(func() { c.recordingTick(rec) })
			}
		}
	}()

	go func() {
		res := <-session.Done()
		c.post(func() { c.recordingDone(rec, res) })
	}()

	return nil
}

func (c *Controller) stopRecording() {
	if c.recording == nil {
		return
	}
	c.recording.session.Stop()
	c.endRecording()
}

// endRecording leaves the recording state: controls come back and the
// panel shows the clip is being processed
func (c *Controller) endRecording() {
	rec := c.recording
	close(rec.stopTick)
	c.recording = nil

	c.setPanelStatus(rec.kind, statusProcessing)
	c.transportStatus = transport.StatusIdle
}

func (c *Controller) recordingTick(rec *recording) {
	if c.recording != rec {
		return
	}
	elapsed := rec.session.Elapsed().Seconds()
	c.transportStatus = fmt.Sprintf("%s • %s", recordingLabel(rec.kind), clock.FormatTime(elapsed))
}

// recordingDone turns the captured bytes into the new clip
func (c *Controller) recordingDone(rec *recording, res capture.Result) {
	// The ceiling or a cancelled context ended the session on its own
	if c.recording == rec {
		c.endRecording()
	}

	if res.Err != nil {
		log.Printf("Recording %s failed: %v", rec.kind, res.Err)
		c.setPanelStatus(rec.kind, statusRecordingFailed)
		return
	}

	cl, err := newClip(res.Data, res.MimeType, c.cfg.WaveformSamples)
	if err != nil {
		log.Printf("Recorded %s could not be decoded: %v", rec.kind, err)
		c.setPanelStatus(rec.kind, statusRecordingFailed)
		return
	}

	if res.Limited {
		log.Printf("Recording %s reached the %s ceiling", rec.kind, rec.session.MaxDuration())
	}

	c.setClip(rec.kind, cl)
	c.setPanelStatus(rec.kind, statusRecorded)
	c.save(statusRecordingSaved)
}
