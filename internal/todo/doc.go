// Package todo defines todo records and the pure logic around them.
//
// A collection is persisted as a single JSON array:
//
//	[
//	  {
//	    "id": "01928c7e-5a4b-7cc1-9a51-3f0d6b8e2c41",
//	    "title": "Renew passport",
//	    "deadline": "2024-06-30T23:59:59.999Z",
//	    "priority": "high",
//	    "completed": false,
//	    "createdAt": "2024-06-01T08:12:44.120Z",
//	    "updatedAt": "2024-06-01T08:12:44.120Z"
//	  }
//	]
//
// # Priority Values
//
//   - "high": rank 1
//   - "medium": rank 2 (default)
//   - "low": rank 3
//
// # Sort Keys
//
//   - "created": newest first (default)
//   - "deadline": soonest first
//   - "priority": high before medium before low
//
// # Validation
//
// Imported and stored arrays are checked against an embedded JSON Schema
// (draft 2020-12). Findings are reported as warnings unless strict mode is
// requested. A value that is not an array is always rejected with
// ErrImportFormat.
//
// # File Format
//
// Exports use 2-space indentation and a trailing newline.
package todo
