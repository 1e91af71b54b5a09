package orchestrator

import (
	"context"

	"taskvoice/internal/chat"
)

// StartCapture 开始录音；处理中或已在录音时返回 ErrBusy
// StartCapture begins recording; ErrBusy while a turn is processing or a capture is running
func (o *Orchestrator) StartCapture(ctx context.Context) error {
	if o.recorder == nil {
		return ErrNoRecorder
	}
	o.mu.Lock()
	if o.processing || o.capturing {
		o.mu.Unlock()
		return ErrBusy
	}
	o.capturing = true
	o.mu.Unlock()

	if err := o.recorder.Start(ctx); err != nil {
		o.mu.Lock()
		o.capturing = false
		o.lastErr = err
		o.mu.Unlock()
		o.notify()
		return err
	}
	o.log.Debug().Msg("capture started")
	o.notify()
	return nil
}

// StopCapture ends recording and sends the clip as a voice turn. An empty
// clip cancels quietly and returns a zero message.
func (o *Orchestrator) StopCapture(ctx context.Context) (chat.Message, error) {
	if o.recorder == nil {
		return chat.Message{}, ErrNoRecorder
	}
	o.mu.Lock()
	if !o.capturing {
		o.mu.Unlock()
		return chat.Message{}, ErrNotCapturing
	}
	o.capturing = false
	o.mu.Unlock()

	clip, err := o.recorder.Stop(ctx)
	if err != nil {
		o.setLastError(err)
		o.notify()
		return chat.Message{}, err
	}
	if len(clip.Data) == 0 {
		o.log.Debug().Msg("capture stopped with no audio")
		o.notify()
		return chat.Message{}, nil
	}
	return o.RunAudio(ctx, clip.Data, clip.MIMEType)
}
