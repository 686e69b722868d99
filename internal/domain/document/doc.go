// Package document contains the document generation bounded context.
// It owns invoice and receipt records, the authoritative totals calculation,
// record validation and the lifecycle of a single generation request.
package document
