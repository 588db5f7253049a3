// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//
// Modifications:
// Copyright 2025 The Swan Authors
//  - Retargeted from a browser-grade HTML5 parser to the SWAN mini-program
//    template dialect: a streaming code-point reader, a hand-rolled
//    tokenizer with mustache and directive awareness, an intermediate
//    token-merging pass, and a tree builder that hands expressions off to
//    an external script parser and splices the result back in.

// Package swan implements the parsing engine for the SWAN template
// dialect: an HTML-like markup language extended with mustache
// interpolations ({{ ... }}), directive attributes (s-if, s-for,
// bind:tap, ...) and embedded script modules (<import-sjs>, <filter>).
//
// Parse ingests source text and returns an *XDocument: a concrete syntax
// tree whose nodes carry UTF-16 code-unit ranges and line/column locations,
// plus the full token stream, the comment stream, and any syntax errors
// recovered along the way. The pipeline has four stages, leaves first: a
// code-point reader, a tokenizer, an intermediate tokenizer, and a tree
// builder. A location calculator translates offsets produced by the
// (external) script parser back into the template's coordinate system.
//
// The package does no I/O, and each call to Parse owns its own buffers.
// The only state shared between calls is a mutex-guarded cache of compiled
// identifier patterns, so calls from different goroutines may run
// concurrently.
package swan
