package codegen

import "github.com/Nitsh-kumar/Data-Nexa/pkg/models"

func pythonSnippet(in *models.CategorizedInsight) (string, bool) {
	col, hasCol := firstColumn(in)
	c := PythonString(col)

	switch in.Type {
	case models.InsightTypeMissingData:
		if hasCol {
			return fill(pyMissingColumn, "col", c), true
		}
		return pyMissingGeneric, true

	case models.InsightTypeDuplicates:
		return pyDuplicates, true

	case models.InsightTypeOutliers:
		if hasCol {
			return fill(pyOutliersColumn, "col", c), true
		}
		return pyOutliersGeneric, true

	case models.InsightTypeDataTypeMismatch:
		if hasCol {
			return fill(pyTypeColumn, "col", c), true
		}
		return pyTypeGeneric, true

	case models.InsightTypePatternViolation:
		if hasCol {
			return fill(pyPatternColumn, "col", c), true
		}
		return pyPatternGeneric, true

	case models.InsightTypeQualityIssue:
		switch {
		case mentions(in, "correlation"):
			if len(in.AffectedColumns) >= 2 {
				return fill(pyCorrelationPair,
					"col1", c,
					"col2", PythonString(in.AffectedColumns[1])), true
			}
		case mentions(in, "cardinality"):
			if hasCol {
				return fill(pyCardinality, "col", c), true
			}
		}
	}
	return "", false
}

const pyMissingColumn = `# Handle missing values in '{col}'
import pandas as pd

# Option 1: drop rows missing '{col}'
df = df.dropna(subset=['{col}'])

# Option 2: impute with the median (numeric columns)
df['{col}'] = df['{col}'].fillna(df['{col}'].median())

# Option 3: impute with the most frequent value (categorical columns)
df['{col}'] = df['{col}'].fillna(df['{col}'].mode()[0])

# Option 4: carry the last observation forward (ordered data)
df['{col}'] = df['{col}'].ffill()`

const pyMissingGeneric = `# Handle missing values
import pandas as pd

# Drop rows with any missing value
df = df.dropna()

# Or drop only rows where every value is missing
df = df.dropna(how='all')

# Impute numeric columns with their medians
numeric_cols = df.select_dtypes(include=['number']).columns
df[numeric_cols] = df[numeric_cols].fillna(df[numeric_cols].median())`

const pyDuplicates = `# Remove duplicate rows
import pandas as pd

print(f"Duplicate rows: {df.duplicated().sum()}")

# Keep the first occurrence of each row
df = df.drop_duplicates(keep='first')

# Or deduplicate on a business key
# df = df.drop_duplicates(subset=['key_column'], keep='last')`

const pyOutliersColumn = `# Handle outliers in '{col}' with the IQR rule
import pandas as pd

q1 = df['{col}'].quantile(0.25)
q3 = df['{col}'].quantile(0.75)
iqr = q3 - q1
lower, upper = q1 - 1.5 * iqr, q3 + 1.5 * iqr

# Option 1: drop rows outside the bounds
df = df[df['{col}'].between(lower, upper)]

# Option 2: cap values at the bounds
df['{col}'] = df['{col}'].clip(lower=lower, upper=upper)`

const pyOutliersGeneric = `# Handle outliers with z-scores
import numpy as np
import pandas as pd

numeric_cols = df.select_dtypes(include=['number']).columns
z = np.abs((df[numeric_cols] - df[numeric_cols].mean()) / df[numeric_cols].std())

# Keep rows where every numeric value is within 3 standard deviations
df = df[(z < 3).all(axis=1)]`

const pyTypeColumn = `# Fix the data type of '{col}'
import pandas as pd

# Numeric (invalid values become NaN)
df['{col}'] = pd.to_numeric(df['{col}'], errors='coerce')

# Or datetime
# df['{col}'] = pd.to_datetime(df['{col}'], errors='coerce')

# Or categorical
# df['{col}'] = df['{col}'].astype('category')`

const pyTypeGeneric = `# Fix data type mismatches
import pandas as pd

# Let pandas infer better dtypes for object columns
df = df.infer_objects()
df = df.convert_dtypes()

print(df.dtypes)`

const pyPatternColumn = `# Standardize the format of '{col}'
import pandas as pd

df['{col}'] = (
    df['{col}']
    .astype('string')
    .str.strip()
    .str.lower()
    .str.replace(r'[^a-z0-9\s@.\-]', '', regex=True)
)

# Example: normalize 10-digit phone numbers to 555-123-4567
# df['{col}'] = df['{col}'].str.replace(r'^(\d{3})(\d{3})(\d{4})$', r'\1-\2-\3', regex=True)`

const pyPatternGeneric = `# Standardize text columns
import pandas as pd

text_cols = df.select_dtypes(include=['object', 'string']).columns
for col in text_cols:
    df[col] = df[col].astype('string').str.strip().str.lower()`

const pyCorrelationPair = `# Handle high correlation between '{col1}' and '{col2}'
import pandas as pd

# Option 1: drop one of the correlated features
df = df.drop(columns=['{col2}'])

# Option 2: replace both with a combined feature
# df['{col1}_{col2}_combined'] = df['{col1}'] + df['{col2}']
# df = df.drop(columns=['{col1}', '{col2}'])

# Option 3: project both onto one principal component
# from sklearn.decomposition import PCA
# df['{col1}_{col2}_pca'] = PCA(n_components=1).fit_transform(df[['{col1}', '{col2}']])
# df = df.drop(columns=['{col1}', '{col2}'])`

const pyCardinality = `# Reduce the cardinality of '{col}'
import pandas as pd

# Option 1: keep the top N categories
top_n = 10
top = df['{col}'].value_counts().nlargest(top_n).index
df['{col}'] = df['{col}'].where(df['{col}'].isin(top), 'Other')

# Option 2: group categories below 1% frequency
freq = df['{col}'].value_counts(normalize=True)
rare = freq[freq < 0.01].index
df['{col}'] = df['{col}'].mask(df['{col}'].isin(rare), 'Other')`

const pythonQualityReview = `# Review overall data quality
import pandas as pd

summary = pd.DataFrame({
    'dtype': df.dtypes.astype(str),
    'missing_pct': df.isna().mean().mul(100).round(1),
    'unique': df.nunique(),
})
print(summary.sort_values('missing_pct', ascending=False))
print(f"Duplicate rows: {df.duplicated().sum()}")
print(df.describe(include='all').T)`
