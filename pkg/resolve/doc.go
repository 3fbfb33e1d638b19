// Package resolve expands deferred route capabilities and matches
// locations against trees that mix static and lazily loaded nodes.
//
// A Resolver memoizes every loader result for its lifetime, so a deferred
// subtree is fetched once no matter how many transitions touch it, and
// concurrent transitions attach to the in-flight load instead of racing.
// ResolveBranch produces the same match a fully static tree would; deferral
// changes when work happens, never which branch wins.
package resolve
