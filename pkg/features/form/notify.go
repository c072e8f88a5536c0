package form

import "sync"

// subscription is a registered change listener.
type subscription struct {
	id uint64
	fn func()
}

// notifier provides subscriber management and change propagation.
// It is embedded in Field and Group to share subscription logic.
type notifier struct {
	parent *Group

	// subs are the listeners subscribed to this control.
	subs   []subscription
	nextID uint64

	// subMu protects subs and nextID.
	subMu sync.Mutex

	// batchDepth > 0 suppresses notifications from this subtree.
	batchDepth int
	pending    bool
}

// Subscribe registers fn to run after every value change of the control or
// any of its descendants. The returned function removes the subscription.
func (n *notifier) Subscribe(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	n.subMu.Lock()
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription{id: id, fn: fn})
	n.subMu.Unlock()

	return func() {
		n.subMu.Lock()
		defer n.subMu.Unlock()
		for i, s := range n.subs {
			if s.id == id {
				n.subs = append(n.subs[:i], n.subs[i+1:]...)
				return
			}
		}
	}
}

// fire runs the subscribers of this control only.
// Uses copy-before-notify so listeners may subscribe or unsubscribe.
func (n *notifier) fire() {
	n.subMu.Lock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.subMu.Unlock()

	for _, s := range subs {
		s.fn()
	}
}

// emit notifies this control's subscribers and bubbles to its ancestors.
// If this control or any ancestor is batching, the notification is parked
// on the outermost batching control instead.
func (n *notifier) emit() {
	if held := n.batchHolder(); held != nil {
		held.pending = true
		return
	}
	for cur := n; cur != nil; {
		cur.fire()
		if cur.parent == nil {
			return
		}
		cur = &cur.parent.notifier
	}
}

// batchHolder returns the outermost batching control on the path to the root.
func (n *notifier) batchHolder() *notifier {
	var held *notifier
	for cur := n; cur != nil; {
		if cur.batchDepth > 0 {
			held = cur
		}
		if cur.parent == nil {
			break
		}
		cur = &cur.parent.notifier
	}
	return held
}

// batch runs fn with notifications suppressed, then emits at most once.
func (n *notifier) batch(fn func()) {
	n.batchDepth++
	defer func() {
		n.batchDepth--
		if n.batchDepth == 0 && n.pending {
			n.pending = false
			n.emit()
		}
	}()
	fn()
}
