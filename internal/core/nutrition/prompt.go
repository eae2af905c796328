package nutrition

const estimatePrompt = `Analyze the food in this image and estimate its nutrition facts for the visible serving.
Respond with ONLY a JSON object, no markdown fences and no extra text, using exactly these fields:
{
  "foodName": "name of the dish or food",
  "servingSize": "estimated serving size with unit, e.g. 1 plate (350g)",
  "calories": "e.g. 520 kcal",
  "protein": "e.g. 32 g",
  "carbohydrates": "e.g. 45 g",
  "fat": "e.g. 18 g",
  "fiber": "e.g. 6 g",
  "sugar": "e.g. 9 g",
  "sodium": "e.g. 780 mg",
  "cholesterol": "optional, e.g. 95 mg",
  "saturatedFat": "optional, e.g. 5 g",
  "transFat": "optional, e.g. 0 g",
  "confidence": "high" | "medium" | "low"
}
All values are strings with units except confidence. If the image contains no food, set foodName to "unknown" and confidence to "low".`
