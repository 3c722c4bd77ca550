package viewer

import (
	"math"
	"time"
)

// ============================================================
// Camera Rig
// ============================================================

// referenceFrame is the frame length the lerp factors were tuned for.
const referenceFrame = time.Second / 60

// CameraRig plays a FocusRequest: every frame the orbit target and the
// camera approach their destinations exponentially. The request clears
// itself after its duration whether or not the camera arrived.
type CameraRig struct {
	req       *FocusRequest
	remaining time.Duration
}

func (r *CameraRig) Focus(req FocusRequest) {
	r.req = &req
	r.remaining = req.Duration
	if r.remaining <= 0 {
		r.remaining = FocusDuration
	}
}

func (r *CameraRig) Active() bool {
	return r.req != nil
}

// Clear drops the current request.
func (r *CameraRig) Clear() {
	r.req = nil
	r.remaining = 0
}

// Step advances the camera by dt.
func (r *CameraRig) Step(cam CameraState, dt time.Duration) CameraState {
	if r.req == nil || dt <= 0 {
		return cam
	}
	frames := float64(dt) / float64(referenceFrame)
	cam.Target = cam.Target.Lerp(r.req.Target, frameAlpha(r.req.TargetLerp, frames))
	cam.Position = cam.Position.Lerp(r.req.CameraDestination, frameAlpha(r.req.CameraLerp, frames))

	r.remaining -= dt
	if r.remaining <= 0 {
		r.Clear()
	}
	return cam
}

// frameAlpha converts a per-frame lerp factor into one for the given number
// of frames, so the approach does not depend on the frame rate.
func frameAlpha(perFrame, frames float64) float64 {
	return 1 - math.Pow(1-perFrame, frames)
}
