// Package ingest turns activity logs into event graphs.
//
// The input is a CSV file with a header row naming some of these columns:
//
//	date, user, host,
//	email_activity, email_content, email_attachments,
//	file_activity, file_filename,
//	device_activity,
//	http_activity, http_url,
//	logon_activity
//
// Each row records one activity; the first non-empty activity column, in the
// order email, file, device, http, logon, decides the edge it becomes:
//
//	email   host -> email<N>     (emails are identified by their content)
//	file    host -> filename
//	device  user -> host
//	http    host -> url
//	logon   user -> host
//
// A sent email with attachments is preceded by one "Attach" edge per
// attachment, file -> email. Rows that cannot be turned into an edge are
// counted and skipped; a single bad row never aborts ingestion.
package ingest
