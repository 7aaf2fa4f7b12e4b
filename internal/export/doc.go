// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes the session store in shareable formats.
//
// # Supported Formats
//
//   - json: the stored shape ({"currentId", "sessions"}), re-loadable
//   - text: one "# Title (id)" section per session
//   - markdown: YAML frontmatter plus one section per session
//   - html: a single self-contained page with embedded CSS
//
// # Usage
//
//	exp, err := export.ForFormat("markdown", export.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	data, err := exp.Export(mgr.Snapshot())
package export
