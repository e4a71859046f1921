// Package confluence implements ports.Wiki against the Confluence REST API
// (/rest/api/content), authenticating with a bearer token.
package confluence
