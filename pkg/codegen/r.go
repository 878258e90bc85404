package codegen

import "github.com/Nitsh-kumar/Data-Nexa/pkg/models"

func rSnippet(in *models.CategorizedInsight) (string, bool) {
	col, hasCol := firstColumn(in)

	switch in.Type {
	case models.InsightTypeMissingData:
		if hasCol {
			return fill(rMissingColumn, "col", RName(col)), true
		}

	case models.InsightTypeDuplicates:
		return rDuplicates, true

	case models.InsightTypeOutliers:
		if hasCol {
			return fill(rOutliersColumn, "col", RName(col)), true
		}
	}
	return "", false
}

const rMissingColumn = `# Handle missing values in {col}
library(dplyr)

# Option 1: drop rows missing {col}
df <- df %>% filter(!is.na({col}))

# Option 2: impute with the median
df <- df %>%
  mutate({col} = ifelse(is.na({col}), median({col}, na.rm = TRUE), {col}))

# Option 3: impute with the most frequent value
mode_value <- names(sort(table(df${col}), decreasing = TRUE))[1]
df${col}[is.na(df${col})] <- mode_value`

const rDuplicates = `# Remove duplicate rows
library(dplyr)

df <- df %>% distinct()

# Or deduplicate on a business key
# df <- df %>% distinct(key_column, .keep_all = TRUE)`

const rOutliersColumn = `# Remove outliers in {col} with the IQR rule
library(dplyr)

q1 <- quantile(df${col}, 0.25, na.rm = TRUE)
q3 <- quantile(df${col}, 0.75, na.rm = TRUE)
iqr <- q3 - q1

df <- df %>%
  filter({col} >= q1 - 1.5 * iqr & {col} <= q3 + 1.5 * iqr)`

const rQualityReview = `# Review overall data quality
library(dplyr)

summary(df)

data.frame(
  missing_pct = round(colMeans(is.na(df)) * 100, 1),
  unique = sapply(df, n_distinct)
)

sum(duplicated(df))`
