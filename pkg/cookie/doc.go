// Package cookie wraps net/http cookie handling with authenticated
// encryption for values that persist credentials in the browser.
//
// The Manager is initialised with one or more secret keys (32+ bytes each).
// The first key encrypts new values with AES-256-GCM; all keys are tried on
// read, which makes key rotation a config change rather than a forced
// logout of every user. Defaults are deliberately strict — Secure,
// HttpOnly, SameSite=Strict, path "/" — because the primary consumers are
// credential cookies.
//
// Besides plain Set/Get/Delete and SetEncrypted/GetEncrypted, the package
// offers single-use flash values (SetFlash/GetFlash) that are deleted in
// the same response that reads them.
package cookie
