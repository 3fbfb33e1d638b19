// Package transition diffs two resolved branches into leave, enter and
// change hook sets and runs the hooks in lifecycle order. It has no
// knowledge of sequencing or commits; the router owns those.
package transition
