package classify

import (
	"github.com/tola-rs/tola/internal/core"
)

// MessageKind tags the scheduler message a classified batch produces.
type MessageKind int

const (
	MsgCompile MessageKind = iota
	MsgFullRebuild
)

// Message is what the router hands to the compile scheduler. A
// FullRebuild message carries no queue — the scheduler reloads
// everything. A Compile message carries the priority queue of sources to
// compile plus the full set of changed paths (used for dependency-graph
// invalidation even for paths that aren't themselves compiled, like
// assets and removed output files).
type Message struct {
	Kind         MessageKind
	Queue        []core.SourcePath // MsgCompile only, created+modified content in order (removed content excluded, handled as OnContentRemoved)
	RemovedQueue []core.SourcePath // MsgCompile only, removed content sources
	ChangedPaths []core.SourcePath // every path touched this batch, any category
	AssetChanges []core.SourcePath
	OutputChanges []core.SourcePath
	DepsChanges  []core.SourcePath
}

// Router turns a classified batch into scheduler messages, in the order
// spec.md §4.2 requires: a Config change short-circuits everything else
// into a FullRebuild; otherwise removed content is routed before created
// content (so a rename's delete-then-create doesn't transiently 404 the
// old permalink after the new one is already live), asset/output/deps
// changes are deduped, and a Compile message is still emitted even with
// an empty queue if other categories changed (e.g. an asset-only edit
// still needs to recompute the asset-version cache).
type Router struct {
	classifier *Classifier
}

// NewRouter returns a Router categorizing paths via classifier.
func NewRouter(classifier *Classifier) *Router {
	return &Router{classifier: classifier}
}

// Route converts a classified batch into zero or one Message. An empty
// batch (everything filtered out as inactionable) produces no message.
func (r *Router) Route(batch DebouncedEvents) *Message {
	if len(batch) == 0 {
		return nil
	}

	for _, ch := range batch {
		if r.classifier.Categorize(ch.Path) == CategoryConfig {
			return &Message{Kind: MsgFullRebuild}
		}
	}

	msg := &Message{}
	removedSeen := make(map[core.SourcePath]bool)
	createdOrModified := make(map[core.SourcePath]bool)

	for _, ch := range batch {
		cat := r.classifier.Categorize(ch.Path)
		msg.ChangedPaths = append(msg.ChangedPaths, ch.Path)

		switch cat {
		case CategoryContent:
			if ch.Kind == Removed {
				if !removedSeen[ch.Path] {
					removedSeen[ch.Path] = true
					msg.RemovedQueue = append(msg.RemovedQueue, ch.Path)
				}
			} else if !createdOrModified[ch.Path] {
				createdOrModified[ch.Path] = true
				msg.Queue = append(msg.Queue, ch.Path)
			}
		case CategoryAsset:
			msg.AssetChanges = appendUnique(msg.AssetChanges, ch.Path)
		case CategoryOutput:
			msg.OutputChanges = appendUnique(msg.OutputChanges, ch.Path)
		case CategoryDeps:
			msg.DepsChanges = appendUnique(msg.DepsChanges, ch.Path)
		}
	}

	msg.Kind = MsgCompile
	return msg
}

func appendUnique(slice []core.SourcePath, p core.SourcePath) []core.SourcePath {
	for _, existing := range slice {
		if existing == p {
			return slice
		}
	}
	return append(slice, p)
}
