package codegen

import "github.com/Nitsh-kumar/Data-Nexa/pkg/models"

func sqlSnippet(in *models.CategorizedInsight) (string, bool) {
	col, hasCol := firstColumn(in)

	switch in.Type {
	case models.InsightTypeDuplicates:
		return sqlDuplicates, true

	case models.InsightTypeMissingData:
		if hasCol {
			return fill(sqlMissingColumn, "col", SQLIdentifier(col)), true
		}
		return sqlMissingGeneric, true

	case models.InsightTypeOutliers:
		if hasCol {
			return fill(sqlOutliersColumn, "col", SQLIdentifier(col)), true
		}
	}
	return "", false
}

const sqlDuplicates = `-- Remove duplicate rows, keeping the lowest id per key
WITH ranked AS (
    SELECT id,
           ROW_NUMBER() OVER (PARTITION BY column1, column2 ORDER BY id) AS rn
    FROM table_name
)
DELETE FROM table_name
WHERE id IN (SELECT id FROM ranked WHERE rn > 1);

-- PostgreSQL without a surrogate key
-- DELETE FROM table_name a USING table_name b
-- WHERE a.ctid > b.ctid AND a.column1 = b.column1 AND a.column2 = b.column2;`

const sqlMissingColumn = `-- Handle NULL values in {col}

-- Option 1: delete incomplete rows
DELETE FROM table_name
WHERE {col} IS NULL;

-- Option 2: set a default
UPDATE table_name
SET {col} = 0  -- choose a sensible default
WHERE {col} IS NULL;

-- Option 3: impute the column average (numeric columns)
UPDATE table_name
SET {col} = (SELECT AVG({col}) FROM table_name WHERE {col} IS NOT NULL)
WHERE {col} IS NULL;`

const sqlMissingGeneric = `-- Handle NULL values

-- Delete rows missing any key column
DELETE FROM table_name
WHERE column1 IS NULL
   OR column2 IS NULL;

-- Replace NULLs with defaults
UPDATE table_name
SET column1 = COALESCE(column1, 'default_value');`

const sqlOutliersColumn = `-- Remove outliers in {col} with the IQR rule
WITH quartiles AS (
    SELECT
        PERCENTILE_CONT(0.25) WITHIN GROUP (ORDER BY {col}) AS q1,
        PERCENTILE_CONT(0.75) WITHIN GROUP (ORDER BY {col}) AS q3
    FROM table_name
),
bounds AS (
    SELECT q1 - 1.5 * (q3 - q1) AS lower_bound,
           q3 + 1.5 * (q3 - q1) AS upper_bound
    FROM quartiles
)
DELETE FROM table_name
WHERE {col} < (SELECT lower_bound FROM bounds)
   OR {col} > (SELECT upper_bound FROM bounds);`

const sqlQualityReview = `-- Review overall data quality
SELECT (SELECT COUNT(*) FROM table_name) AS total_rows,
       (SELECT COUNT(*) FROM (SELECT DISTINCT * FROM table_name) d) AS distinct_rows;

-- Per-column completeness and cardinality
SELECT COUNT(*) - COUNT(column1) AS column1_nulls,
       COUNT(DISTINCT column1)   AS column1_distinct
FROM table_name;`
