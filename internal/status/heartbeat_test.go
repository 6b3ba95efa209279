package status

import (
	"testing"
	"time"
)

func TestHeartbeatInterval(t *testing.T) {
	hb := NewHeartbeat(15*time.Minute, epoch)

	if hb.Due(epoch.Add(14 * time.Minute)) {
		t.Error("due before interval")
	}
	if !hb.Due(epoch.Add(15 * time.Minute)) {
		t.Error("not due at interval")
	}
	if hb.Due(epoch.Add(16 * time.Minute)) {
		t.Error("due again one minute after a beat")
	}
	if !hb.Due(epoch.Add(30 * time.Minute)) {
		t.Error("not due one interval after the last beat")
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	hb := NewHeartbeat(0, epoch)
	if hb.Due(epoch.Add(24 * time.Hour)) {
		t.Error("zero interval must never be due")
	}
}

func TestHeartbeatClockStepBack(t *testing.T) {
	hb := NewHeartbeat(time.Minute, epoch)

	back := epoch.Add(-time.Hour)
	if hb.Due(back) {
		t.Error("due after wall clock stepped backwards")
	}
	if !hb.Due(back.Add(time.Minute)) {
		t.Error("not due one interval after the step")
	}
}
