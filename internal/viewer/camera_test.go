package viewer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCameraRigConverges(t *testing.T) {
	var rig CameraRig
	rig.Focus(FocusRequest{
		Target:            V(1, 0, 0),
		CameraDestination: V(1.5, 0.5, 0.5),
		TargetLerp:        focusTargetLerp,
		CameraLerp:        focusCameraLerp,
		Duration:          FocusDuration,
	})
	cam := DefaultCamera

	prev := cam.Target.Distance(V(1, 0, 0))
	for i := 0; i < 30; i++ {
		cam = rig.Step(cam, referenceFrame)
		d := cam.Target.Distance(V(1, 0, 0))
		assert.Less(t, d, prev)
		prev = d
	}
	assert.True(t, rig.Active())

	for rig.Active() {
		cam = rig.Step(cam, referenceFrame)
	}
	assert.InDelta(t, 0, cam.Target.Distance(V(1, 0, 0)), 0.01)

	// once cleared the camera is left alone
	assert.Equal(t, cam, rig.Step(cam, referenceFrame))
}

func TestCameraRigIsFrameRateIndependent(t *testing.T) {
	req := FocusRequest{Target: V(0, 2, 0), CameraDestination: V(1, 1, 1), TargetLerp: 0.1, CameraLerp: 0.05, Duration: time.Second}

	var fast, slow CameraRig
	fast.Focus(req)
	slow.Focus(req)
	a, b := DefaultCamera, DefaultCamera
	for i := 0; i < 4; i++ {
		a = fast.Step(a, referenceFrame)
	}
	b = slow.Step(b, 4*referenceFrame)

	assert.InDelta(t, 0, a.Target.Distance(b.Target), 1e-9)
	assert.InDelta(t, 0, a.Position.Distance(b.Position), 1e-9)
}

func TestCameraRigExpires(t *testing.T) {
	var rig CameraRig
	rig.Focus(FocusRequest{Target: V(9, 9, 9), TargetLerp: 0.1, CameraLerp: 0.05})
	rig.Step(DefaultCamera, 999*time.Millisecond)
	assert.True(t, rig.Active())
	rig.Step(DefaultCamera, 2*time.Millisecond)
	assert.False(t, rig.Active())
}
