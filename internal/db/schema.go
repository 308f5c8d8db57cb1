package db

// SchemaSQL initializes the two tables of the record store.
//
// The UNIQUE index on process.external_id is what makes upsert-by-external-id
// safe under concurrent ingestion: the lookup-then-write in UpsertProcess is
// not atomic, so the losing writer gets an index conflict and retries as an
// update. Actions get the same guarantee through a computed dedup_key: the
// (process, external_action_id) pair when the external id is present, the
// record's own id otherwise (so key-less actions never collide).
const SchemaSQL = `
    -- ==========================================================================
    -- PROCESS TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS process SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS external_id ON process TYPE string;
    DEFINE FIELD IF NOT EXISTS registration_number ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS court ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS reporting_judge ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS parties ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS filing_date ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS process_type ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS process_class ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS file_location ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS plaintiff ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS defendant ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS search_term_used ON process TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS queried_at ON process TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS created ON process TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated ON process TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS process_external_id ON process FIELDS external_id UNIQUE;

    -- ==========================================================================
    -- ACTION TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS action SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS process ON action TYPE record<process>;
    DEFINE FIELD IF NOT EXISTS external_action_id ON action TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS action_date ON action TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS action_type ON action TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS annotation ON action TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS term_start_date ON action TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS term_end_date ON action TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS registered_date ON action TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS has_documents ON action TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS ai_summary ON action TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS ai_urgency ON action TYPE option<string>
        ASSERT $value == NONE OR $value INSIDE ["HIGH", "MEDIUM", "LOW"];
    DEFINE FIELD IF NOT EXISTS created ON action TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated ON action TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS dedup_key ON action VALUE
        IF external_action_id != NONE
        THEN string::concat(<string>process, '|', external_action_id)
        ELSE <string>id END;

    DEFINE INDEX IF NOT EXISTS action_dedup ON action FIELDS dedup_key UNIQUE;
    DEFINE INDEX IF NOT EXISTS action_process ON action FIELDS process;
`
