// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, expression
// evaluation against the process environment, and HCL-to-model translation.
//
// Expressions may refer to environment variables as env.NAME, for example
// `url = env.TRACE_URL`.
package hcl
