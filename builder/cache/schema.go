package cache

// BoltDB bucket names
const (
	BucketRenders = "renders" // {render key} -> RenderEntry
	BucketMeta    = "meta"    // schema_version, cache_id
	BucketStats   = "stats"   // build_count, last_build_time

	// Meta keys
	KeySchemaVersion = "schema_version"
	KeyCacheID       = "cache_id"
	KeyBuildCount    = "build_count"
	KeyLastBuild     = "last_build_time"
)

// AllBuckets returns all bucket names for initialization
func AllBuckets() []string {
	return []string{
		BucketRenders,
		BucketMeta,
		BucketStats,
	}
}
