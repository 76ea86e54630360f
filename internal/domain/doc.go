// Package domain contains the core model for appserve: configuration, error
// classification and the probe/check report used by `appserve check`.
//
// The domain does not depend on YAML parsing or net/http. Infra
// adapters map into and out of these types.
package domain
