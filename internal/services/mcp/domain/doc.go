// Package domain exposes the command interpreter as MCP tools and resources.
//
// Tools classify commands exactly as the browser simulator does, so an agent
// can preview the output area for an entry without driving a page.
package domain
