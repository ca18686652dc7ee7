// Package git warns about git state that secure deletion cannot fix.
//
// Checks performed:
//   - Whether files about to be shredded are tracked by git (their content
//     survives in history even after the working copy is overwritten)
//   - Whether freshly decrypted files are covered by .gitignore
//
// All checks shell out to the git binary and degrade to "not a repository"
// when git is missing.
package git
