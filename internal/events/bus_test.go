package events

import (
	"testing"
	"time"
)

func TestBus_SubscribeAndPublish(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Publish(NewWorkflowStartedEvent("wf-1", "incident-response", "UserDatabase", 3))

	select {
	case ev := <-ch:
		if ev.EventType() != TypeWorkflowStarted {
			t.Fatalf("unexpected event type: %s", ev.EventType())
		}
		if ev.WorkflowID() != "wf-1" {
			t.Fatalf("unexpected workflow id: %s", ev.WorkflowID())
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
}

func TestBus_TypeFilter(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe(TypeApprovalDecided)
	bus.Publish(NewPhaseStartedEvent("wf-1", "Triage", 0, 1))
	bus.Publish(NewApprovalDecidedEvent("wf-1", true))

	select {
	case ev := <-ch:
		if ev.EventType() != TypeApprovalDecided {
			t.Fatalf("filter leaked event type %s", ev.EventType())
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for filtered event")
	}
}

func TestBus_RingBufferDropsOldest(t *testing.T) {
	bus := New(1)
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Publish(NewPhaseStartedEvent("wf-1", "first", 0, 1))
	bus.Publish(NewPhaseStartedEvent("wf-1", "second", 1, 1))

	ev := <-ch
	phase, ok := ev.(PhaseStartedEvent)
	if !ok {
		t.Fatalf("unexpected event %T", ev)
	}
	if phase.Phase != "second" {
		t.Fatalf("expected oldest event dropped, got %s", phase.Phase)
	}
	if bus.DroppedCount() == 0 {
		t.Fatalf("expected dropped count to increase")
	}
}

func TestBus_PriorityDelivery(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	prio := bus.SubscribePriority()
	done := make(chan Event, 1)
	go func() {
		done <- <-prio
	}()

	bus.PublishPriority(NewWorkflowFailedEvent("wf-1", "Triage", nil))

	select {
	case ev := <-done:
		if ev.EventType() != TypeWorkflowFailed {
			t.Fatalf("unexpected event type: %s", ev.EventType())
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for priority event")
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := New(10)
	bus.Close()
	// Must not panic.
	bus.Publish(NewWorkflowResetEvent("wf-1"))
	bus.Close()
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Fatalf("expected closed channel after unsubscribe")
	}
}
