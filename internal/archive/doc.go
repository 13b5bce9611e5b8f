// Package archive records raw feed frames to Postgres for replay and
// audit. Frames are batched and inserted with pgx batches; the archive
// path never blocks realtime delivery.
//
// Schema:
//
//	CREATE TABLE feed_archive (
//		id          BIGSERIAL PRIMARY KEY,
//		feed        TEXT NOT NULL,
//		payload     JSONB NOT NULL,
//		received_at BIGINT NOT NULL  -- microseconds
//	);
package archive
