/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tool holds the editing state shared by every component on the board:
// the current selection, the arrow-link gesture and the text prompt fields use
// for editing. Components read it and call BeginArrow; only the context moves
// a gesture out of its pending state.
package tool

import (
	"log/slog"
	"sort"
	"time"

	"docflow/internal/field"
	applog "docflow/internal/log"
)

// Component is anything that can be selected or take part in a link.
type Component interface {
	ID() string
}

// ArrowMode is the state of the arrow tool.
type ArrowMode int

const (
	ArrowNone  ArrowMode = iota
	ArrowStart           // awaiting the anchor of a link
	ArrowEnd             // anchor recorded, awaiting the target
)

func (m ArrowMode) String() string {
	switch m {
	case ArrowStart:
		return "awaiting-start"
	case ArrowEnd:
		return "awaiting-end"
	default:
		return "none"
	}
}

// Active reports whether the arrow tool is collecting participants.
func (m ArrowMode) Active() bool { return m == ArrowStart || m == ArrowEnd }

// ParticipantKind tags what a gesture participant is.
type ParticipantKind int

const (
	ParticipantStart ParticipantKind = iota + 1
	ParticipantEnd
	ParticipantPage
)

func (k ParticipantKind) String() string {
	switch k {
	case ParticipantStart:
		return "start"
	case ParticipantEnd:
		return "end"
	case ParticipantPage:
		return "page"
	default:
		return "unknown"
	}
}

// ParseParticipantKind is the inverse of ParticipantKind.String.
func ParseParticipantKind(s string) (ParticipantKind, bool) {
	switch s {
	case "start":
		return ParticipantStart, true
	case "end":
		return ParticipantEnd, true
	case "page":
		return ParticipantPage, true
	}
	return 0, false
}

// Participant is one component collected by an arrow-link gesture.
type Participant struct {
	Kind ParticipantKind
	Ref  Component
}

// PageParticipant tags c as a page.
func PageParticipant(c Component) Participant { return Participant{Kind: ParticipantPage, Ref: c} }

// ID returns the referenced component's ID.
func (p Participant) ID() string {
	if p.Ref == nil {
		return ""
	}
	return p.Ref.ID()
}

// Link is a committed directional link.
type Link struct {
	From, To Participant
}

// TextPrompt asks the user for a new field value; false means cancelled.
type TextPrompt func(req field.EditRequest) (string, bool)

// Options configure a Context.
type Options struct {
	// GestureTimeout clears a half-finished gesture on the next Expire call
	// once it is older than this. Zero disables expiry.
	GestureTimeout time.Duration
	// OnLink receives every committed link.
	OnLink func(Link)
	Prompt TextPrompt
}

// Context is the shared tool state. It is used from the single event loop
// only and is not safe for concurrent use.
type Context struct {
	opts     Options
	log      *slog.Logger
	now      func() time.Time
	selected map[string]struct{}
	mode     ArrowMode
	parts    []Participant
	started  time.Time
	last     *Link
}

func NewContext(opts Options) *Context {
	return &Context{
		opts:     opts,
		log:      applog.WithComponent("tool"),
		now:      time.Now,
		selected: make(map[string]struct{}),
	}
}

// SetPrompt replaces the text prompt used by fields.
func (c *Context) SetPrompt(p TextPrompt) { c.opts.Prompt = p }

// SetOnLink replaces the link callback.
func (c *Context) SetOnLink(fn func(Link)) { c.opts.OnLink = fn }

// EditText forwards a field edit to the prompt. Without a prompt nothing is edited.
func (c *Context) EditText(req field.EditRequest) (string, bool) {
	if c.opts.Prompt == nil {
		return "", false
	}
	return c.opts.Prompt(req)
}

func (c *Context) Select(id string)   { c.selected[id] = struct{}{} }
func (c *Context) Deselect(id string) { delete(c.selected, id) }
func (c *Context) ClearSelection()    { c.selected = make(map[string]struct{}) }

func (c *Context) IsSelected(id string) bool {
	_, ok := c.selected[id]
	return ok
}

// Selected returns the selected IDs in sorted order.
func (c *Context) Selected() []string {
	out := make([]string, 0, len(c.selected))
	for id := range c.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (c *Context) ArrowMode() ArrowMode { return c.mode }

// SetArrowMode switches the arrow tool. Leaving arrow mode drops any pending gesture.
func (c *Context) SetArrowMode(m ArrowMode) {
	if !m.Active() {
		c.Abort()
	}
	c.mode = m
}

// ArrowParticipants returns a copy of the participants collected so far.
func (c *Context) ArrowParticipants() []Participant {
	return append([]Participant(nil), c.parts...)
}

// BeginArrow records p in the current gesture. The first participant anchors
// the link; the second completes it, which commits the link and resets the
// gesture. Recording the anchor again is ignored.
func (c *Context) BeginArrow(p Participant) {
	if !c.mode.Active() || p.Ref == nil {
		return
	}
	switch len(c.parts) {
	case 0:
		c.parts = append(c.parts, p)
		c.started = c.now()
		c.mode = ArrowEnd
		c.log.Debug("link anchored", slog.String("kind", p.Kind.String()), slog.String("id", p.ID()))
	default:
		from := c.parts[0]
		if from.ID() == p.ID() {
			return
		}
		l := Link{From: from, To: p}
		c.last = &l
		c.parts = nil
		c.mode = ArrowStart
		c.log.Info("link committed", slog.String("from", from.ID()), slog.String("to", p.ID()))
		if c.opts.OnLink != nil {
			c.opts.OnLink(l)
		}
	}
}

// LastLink returns the most recently committed link.
func (c *Context) LastLink() (Link, bool) {
	if c.last == nil {
		return Link{}, false
	}
	return *c.last, true
}

// Abort drops a pending gesture. The arrow tool stays active.
func (c *Context) Abort() {
	if len(c.parts) > 0 {
		c.log.Debug("link gesture aborted", slog.Int("participants", len(c.parts)))
	}
	c.parts = nil
	c.started = time.Time{}
	if c.mode == ArrowEnd {
		c.mode = ArrowStart
	}
}

// Expire aborts a pending gesture older than the configured timeout and
// reports whether it did.
func (c *Context) Expire(now time.Time) bool {
	if c.opts.GestureTimeout <= 0 || len(c.parts) == 0 {
		return false
	}
	if now.Sub(c.started) < c.opts.GestureTimeout {
		return false
	}
	c.Abort()
	return true
}
