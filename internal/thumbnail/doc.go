// Package thumbnail derives fixed-size PNG previews from each record's source
// image and decides, from filesystem timestamps alone, whether they are stale.
//
// Layout: <root>/<category without "blocks/">/<src>/<src>_<size>.png, where
// root defaults to <sourceRoot>/blocks. No state is persisted; every check
// re-reads presence and modification times from disk.
//
// Batches (GenerateMissingOrOutdated, Start) run on an errgroup bounded by the
// configured worker count, report (done, total) progress after each record, and
// always return a Summary, including after cancellation.
package thumbnail
