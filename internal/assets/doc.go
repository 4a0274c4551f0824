// Package assets provides CSS add-ons layered on top of a layout stylesheet.
//
// # Loader Architecture
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in add-ons (compact, draft, large-print)
//	    ├── FilesystemLoader  - add-ons from a custom directory on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// ResolveCSS turns a user reference into CSS content: a file path is read,
// inline CSS is returned as is, and anything else is loaded by name.
//
// # Directory Structure
//
//	{basePath}/
//	└── styles/
//	    └── {name}.css
//
// # Security
//
// Style names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
