package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- CONTENT TASK TABLE
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS content_task SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS url ON content_task TYPE string;
    DEFINE FIELD IF NOT EXISTS instructions ON content_task TYPE string;
    DEFINE FIELD IF NOT EXISTS status ON content_task TYPE string;
    DEFINE FIELD IF NOT EXISTS metadata ON content_task TYPE option<object> FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS created ON content_task TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated ON content_task TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS content_task_status ON content_task FIELDS status;

    -- ==========================================================================
    -- CONTENT ITEM TABLE (one row per item field)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS content_item SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS task_id ON content_item TYPE string;
    DEFINE FIELD IF NOT EXISTS item_index ON content_item TYPE int;
    DEFINE FIELD IF NOT EXISTS field_index ON content_item TYPE int;
    DEFINE FIELD IF NOT EXISTS field_name ON content_item TYPE string;
    DEFINE FIELD IF NOT EXISTS field_value ON content_item TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS source ON content_item TYPE string;
    DEFINE FIELD IF NOT EXISTS detail ON content_item TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created ON content_item TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS content_item_task ON content_item FIELDS task_id;

    -- ==========================================================================
    -- CONTENT TABLE TABLE (final table output, one row per task)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS content_table SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS columns ON content_table TYPE array<string>;
    -- rows are JSON serialized to keep the closed value variant intact
    DEFINE FIELD IF NOT EXISTS rows ON content_table TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS total_rows ON content_table TYPE int;
    DEFINE FIELD IF NOT EXISTS generated_fields ON content_table TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS created ON content_table TYPE datetime DEFAULT time::now();
`
