// Package secret resolves credentials referenced from backend settings so
// configuration files never carry them in clear text.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Secret providers (see Provider and Open): env and file
//   - A TTL cache in front of slow providers (see CachedProvider)
//   - Resolving secret references in settings maps (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:env:SMTP_PASSWORD
//   - Inline use:  Bearer secretref:file:webhook/token
package secret
